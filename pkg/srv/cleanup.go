package srv

import "context"

// cleanupService adapts a close function to the Service interface so
// resource teardown can ride the normal shutdown sequence.
type cleanupService struct {
	cleanup func() error
}

// Start does nothing. The service only participates in shutdown.
func (c *cleanupService) Start(ctx context.Context) error {
	return nil
}

func (c *cleanupService) Shutdown(ctx context.Context) error {
	if c.cleanup == nil {
		return nil
	}
	return c.cleanup()
}

func NewCleanup(fn func() error) Service {
	return &cleanupService{cleanup: fn}
}
