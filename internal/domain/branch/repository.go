package branch

import "context"

type BranchRepository interface {
	// GetByEmployeeID resolves the branch configuration for an employee.
	GetByEmployeeID(ctx context.Context, employeeID string) (Branch, error)
}
