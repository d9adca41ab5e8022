package domain

// Department is the plant area a work order belongs to.
type Department string

const (
	DepartmentElectrical    Department = "Electrical"
	DepartmentMechanical    Department = "Mechanical"
	DepartmentMiscellaneous Department = "Miscellaneous"
)

// IsValid reports whether d is one of the known departments.
func (d Department) IsValid() bool {
	switch d {
	case DepartmentElectrical, DepartmentMechanical, DepartmentMiscellaneous:
		return true
	}
	return false
}
