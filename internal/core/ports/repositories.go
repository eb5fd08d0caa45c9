package ports

import (
	"context"

	"github.com/samirrijal/homeward/internal/core/domain"
)

// FrameRepository persists rendered frames.
type FrameRepository interface {
	Insert(ctx context.Context, frame *domain.Frame) error
	Latest(ctx context.Context, profile string) (*domain.Frame, error)
	ListByProfile(ctx context.Context, profile string, offset, limit int) ([]domain.Frame, error)
	CountByProfile(ctx context.Context, profile string) (int, error)
}
