package handlers

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/workorder-service/internal/access"
	"github.com/spec-kit/workorder-service/internal/api/dto"
	"github.com/spec-kit/workorder-service/internal/auth"
	"github.com/spec-kit/workorder-service/internal/domain"
	"github.com/spec-kit/workorder-service/internal/service"
	"github.com/spec-kit/workorder-service/internal/workflow"
	apperrors "github.com/spec-kit/workorder-service/pkg/util/errorutil"
)

// WorkOrdersHandler serves the work order endpoints.
type WorkOrdersHandler struct {
	service *service.WorkOrderService
}

// NewWorkOrdersHandler constructs handler.
func NewWorkOrdersHandler(workOrders *service.WorkOrderService) *WorkOrdersHandler {
	return &WorkOrdersHandler{service: workOrders}
}

// Create POST /workorders.
func (h *WorkOrdersHandler) Create(c *fiber.Ctx) error {
	actor, err := requireActor(c)
	if err != nil {
		return err
	}
	var req dto.CreateWorkOrderRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if err := dto.Validate(req); err != nil {
		return err
	}
	wo, err := h.service.Create(c.UserContext(), actor, workflow.CreateInput{
		Problem:     req.Problem,
		Department:  domain.Department(req.Department),
		EquipmentID: req.Equipment,
		WorkTypeID:  req.TypeOfWork,
		PartID:      req.Part,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": workOrderResponse(wo)})
}

// List GET /workorders.
func (h *WorkOrdersHandler) List(c *fiber.Ctx) error {
	actor, err := requireActor(c)
	if err != nil {
		return err
	}
	query, err := parseListQuery(c)
	if err != nil {
		return err
	}
	list, err := h.service.List(c.UserContext(), actor, service.ListFilter{
		Statuses:   query.Statuses,
		Department: query.Department,
		Accepted:   query.Accepted,
		Closed:     query.Closed,
		Limit:      query.PageSize,
		Offset:     (query.Page - 1) * query.PageSize,
	})
	if err != nil {
		return err
	}
	items := make([]dto.WorkOrderResponse, 0, len(list))
	for i := range list {
		items = append(items, workOrderResponse(&list[i]))
	}
	return c.JSON(fiber.Map{"data": items, "page": query.Page, "page_size": query.PageSize})
}

// Get GET /workorders/:id.
func (h *WorkOrdersHandler) Get(c *fiber.Ctx) error {
	actor, err := requireActor(c)
	if err != nil {
		return err
	}
	wo, err := h.service.Get(c.UserContext(), actor, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": workOrderResponse(wo)})
}

// Update PATCH /workorders/:id.
func (h *WorkOrdersHandler) Update(c *fiber.Ctx) error {
	actor, err := requireActor(c)
	if err != nil {
		return err
	}
	var req dto.UpdateWorkOrderRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if err := dto.Validate(req); err != nil {
		return err
	}
	patch, err := patchFromRequest(req)
	if err != nil {
		return err
	}
	wo, err := h.service.Update(c.UserContext(), actor, c.Params("id"), patch)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": workOrderResponse(wo)})
}

// Accept POST /workorders/:id/accept.
func (h *WorkOrdersHandler) Accept(c *fiber.Ctx) error {
	actor, err := requireActor(c)
	if err != nil {
		return err
	}
	var req dto.AcceptWorkOrderRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return apperrors.NewValidationError("invalid payload", nil)
		}
	}
	if err := dto.Validate(req); err != nil {
		return err
	}
	targetDate, err := parseDate("target_date", req.TargetDate)
	if err != nil {
		return err
	}
	wo, err := h.service.Accept(c.UserContext(), actor, c.Params("id"), workflow.Accept{
		AssignedTo: req.AssignedTo,
		TargetDate: targetDate,
		Remarks:    req.Remarks,
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": workOrderResponse(wo)})
}

// Reject POST /workorders/:id/reject.
func (h *WorkOrdersHandler) Reject(c *fiber.Ctx) error {
	actor, err := requireActor(c)
	if err != nil {
		return err
	}
	wo, err := h.service.Reject(c.UserContext(), actor, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": workOrderResponse(wo)})
}

// Complete POST /workorders/:id/complete.
func (h *WorkOrdersHandler) Complete(c *fiber.Ctx) error {
	actor, err := requireActor(c)
	if err != nil {
		return err
	}
	wo, err := h.service.Complete(c.UserContext(), actor, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": workOrderResponse(wo)})
}

// Close POST /workorders/:id/close.
func (h *WorkOrdersHandler) Close(c *fiber.Ctx) error {
	actor, err := requireActor(c)
	if err != nil {
		return err
	}
	var req dto.CloseWorkOrderRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if err := dto.Validate(req); err != nil {
		return err
	}
	closed := req.Closed.Yes()
	wo, err := h.service.Close(c.UserContext(), actor, c.Params("id"), workflow.Close{
		Closed:         &closed,
		ClosingRemarks: req.ClosingRemarks,
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": workOrderResponse(wo)})
}

// History GET /workorders/:id/history.
func (h *WorkOrdersHandler) History(c *fiber.Ctx) error {
	actor, err := requireActor(c)
	if err != nil {
		return err
	}
	entries, err := h.service.History(c.UserContext(), actor, c.Params("id"))
	if err != nil {
		return err
	}
	resp := make([]dto.HistoryEntryResponse, 0, len(entries))
	for _, entry := range entries {
		resp = append(resp, dto.HistoryEntryResponse{
			ID:        entry.ID,
			Snapshot:  entry.Snapshot,
			Timestamp: entry.Timestamp,
			ChangedBy: entry.ChangedBy,
			Action:    entry.Action,
		})
	}
	return c.JSON(fiber.Map{"data": resp})
}

// CheckAccess GET /workorders/:id/check-access.
func (h *WorkOrdersHandler) CheckAccess(c *fiber.Ctx) error {
	actor, err := requireActor(c)
	if err != nil {
		return err
	}
	decision, err := h.service.CheckAccess(c.UserContext(), actor, c.Params("id"))
	if err != nil {
		return err
	}
	status := http.StatusOK
	if decision != access.DecisionOK {
		status = http.StatusForbidden
	}
	return c.Status(status).JSON(dto.CheckAccessResponse{Status: string(decision)})
}

func requireActor(c *fiber.Ctx) (domain.Actor, error) {
	actor, ok := auth.ActorFromContext(c)
	if !ok {
		return domain.Actor{}, apperrors.NewUnauthorized("authentication required")
	}
	return actor, nil
}

func parseListQuery(c *fiber.Ctx) (dto.WorkOrderListQuery, error) {
	query := dto.WorkOrderListQuery{}
	invalid := map[string]any{}
	if statusStr := c.Query("work_status"); statusStr != "" {
		for _, part := range strings.Split(statusStr, ",") {
			status := domain.WorkStatus(strings.TrimSpace(part))
			if !status.IsValid() {
				invalid["work_status"] = "must be one of Pending, In_Process, Completed, Rejected"
				continue
			}
			query.Statuses = append(query.Statuses, status)
		}
	}
	if deptStr := c.Query("department"); deptStr != "" {
		dept := domain.Department(deptStr)
		if !dept.IsValid() {
			invalid["department"] = "must be one of Electrical, Mechanical, Miscellaneous"
		} else {
			query.Department = &dept
		}
	}
	if acceptedStr := c.Query("accepted"); acceptedStr != "" {
		accepted, err := strconv.ParseBool(acceptedStr)
		if err != nil {
			invalid["accepted"] = "must be a boolean"
		} else {
			query.Accepted = &accepted
		}
	}
	if closedStr := c.Query("closed"); closedStr != "" {
		closed := domain.ClosedState(closedStr)
		if closed != domain.ClosedYes && closed != domain.ClosedNo {
			invalid["closed"] = "must be one of Yes, No"
		} else {
			query.Closed = &closed
		}
	}
	if len(invalid) > 0 {
		return query, apperrors.NewValidationError("invalid query", invalid)
	}
	query.Page = parseInt(c.Query("page"), 1)
	query.PageSize = parseInt(c.Query("page_size"), 20)
	if query.PageSize > 100 {
		query.PageSize = 100
	}
	return query, nil
}

func patchFromRequest(req dto.UpdateWorkOrderRequest) (workflow.Patch, error) {
	patch := workflow.Patch{
		Accepted:        req.Accepted,
		AssignedTo:      req.AssignedTo,
		Remarks:         req.Remarks,
		PendingReasonID: req.Pending,
		ReplacedPart:    req.ReplacedPart,
		PRNumber:        req.PRNumber,
		ClosingRemarks:  req.ClosingRemarks,
	}
	if req.WorkStatus != nil {
		status := domain.WorkStatus(*req.WorkStatus)
		patch.Status = &status
	}
	if req.Closed != nil {
		closed := req.Closed.Yes()
		patch.Closed = &closed
	}
	var err error
	if patch.TargetDate, err = parseDate("target_date", req.TargetDate); err != nil {
		return patch, err
	}
	if patch.PRDate, err = parseDate("pr_date", req.PRDate); err != nil {
		return patch, err
	}
	return patch, nil
}

func parseDate(field string, val *string) (*time.Time, error) {
	if val == nil || *val == "" {
		return nil, nil
	}
	t, err := time.Parse(dto.DateLayout, *val)
	if err != nil {
		return nil, apperrors.NewValidationError("invalid date", map[string]any{field: "must be a date in 2006-01-02 format"})
	}
	return &t, nil
}

func parseInt(val string, def int) int {
	if val == "" {
		return def
	}
	parsed, err := strconv.Atoi(val)
	if err != nil || parsed <= 0 {
		return def
	}
	return parsed
}

func formatDate(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format(dto.DateLayout)
	return &s
}

func workOrderResponse(wo *domain.WorkOrder) dto.WorkOrderResponse {
	return dto.WorkOrderResponse{
		ID:             wo.ID,
		InitiationDate: wo.InitiationDate,
		Department:     wo.Department,
		Problem:        wo.Problem,
		InitiatedBy:    wo.InitiatedBy,
		Equipment:      wo.EquipmentID,
		Part:           wo.PartID,
		TypeOfWork:     wo.WorkTypeID,
		WorkStatus:     wo.Status,
		Pending:        wo.PendingReasonID,
		Closed:         wo.Closed,
		ClosingRemarks: wo.ClosingRemarks,
		Accepted:       wo.Accepted,
		AssignedTo:     wo.AssignedTo,
		TargetDate:     formatDate(wo.TargetDate),
		Remarks:        wo.Remarks,
		ReplacedPart:   wo.ReplacedPart,
		CompletionDate: wo.CompletionDate,
		PRNumber:       wo.PRNumber,
		PRDate:         formatDate(wo.PRDate),
		UpdatedAt:      wo.UpdatedAt,
	}
}
