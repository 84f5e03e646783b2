package employee

import "context"

// EmployeeRepository is the read-only directory lookup consumed by attendance
// operations.
type EmployeeRepository interface {
	GetByID(ctx context.Context, id string) (Employee, error)
}
