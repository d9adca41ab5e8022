package dto

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/spec-kit/workorder-service/pkg/util/errorutil"
)

func TestValidateCreateRequest(t *testing.T) {
	ok := CreateWorkOrderRequest{Problem: "leak", Department: "Electrical", Equipment: "eq-1", TypeOfWork: "wt-1"}
	assert.NoError(t, Validate(ok))

	err := Validate(CreateWorkOrderRequest{Department: "Plumbing"})
	require.Error(t, err)
	domainErr := apperrors.ToDomainError(err)
	assert.Equal(t, apperrors.CodeValidation, domainErr.Code)
	assert.Equal(t, "required", domainErr.Details["problem"])
	assert.Equal(t, "required", domainErr.Details["equipment"])
	assert.Equal(t, "required", domainErr.Details["type_of_work"])
	assert.Equal(t, "must be one of Electrical, Mechanical, Miscellaneous", domainErr.Details["department"])
}

func TestValidateDatesAndEnums(t *testing.T) {
	bad := "31/12/2024"
	err := Validate(AcceptWorkOrderRequest{TargetDate: &bad})
	require.Error(t, err)
	assert.Contains(t, apperrors.ToDomainError(err).Details, "target_date")

	good := "2024-12-31"
	assert.NoError(t, Validate(AcceptWorkOrderRequest{TargetDate: &good}))

	status := "Done"
	err = Validate(UpdateWorkOrderRequest{WorkStatus: &status})
	require.Error(t, err)
	assert.Contains(t, apperrors.ToDomainError(err).Details, "work_status")

	assert.Error(t, Validate(CloseWorkOrderRequest{}))
	no := ClosedFlag(false)
	assert.NoError(t, Validate(CloseWorkOrderRequest{Closed: &no}))
}

func TestClosedFlagCoercion(t *testing.T) {
	cases := map[string]bool{
		`true`:    true,
		`false`:   false,
		`"true"`:  true,
		`"Yes"`:   true,
		`"yes"`:   true,
		`" YES "`: true,
		`"1"`:     true,
		`1`:       true,
		`0`:       false,
		`"No"`:    false,
		`"maybe"`: false,
	}
	for raw, want := range cases {
		t.Run(raw, func(t *testing.T) {
			var req CloseWorkOrderRequest
			require.NoError(t, json.Unmarshal([]byte(`{"closed":`+raw+`}`), &req))
			require.NotNil(t, req.Closed)
			assert.Equal(t, want, req.Closed.Yes())
			assert.NoError(t, Validate(req))
		})
	}
}

func TestClosedFlagRequired(t *testing.T) {
	for _, body := range []string{`{}`, `{"closed":null}`} {
		var req CloseWorkOrderRequest
		require.NoError(t, json.Unmarshal([]byte(body), &req))
		err := Validate(req)
		require.Error(t, err, body)
		assert.Equal(t, "required", apperrors.ToDomainError(err).Details["closed"])
	}
}
