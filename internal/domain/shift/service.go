package shift

import "context"

type ScheduleService interface {
	ScheduleSingleShift(ctx context.Context, req CreateShiftRequest) (ShiftResponse, error)
	ScheduleBatch(ctx context.Context, req BatchScheduleRequest) (BatchScheduleResult, error)

	GetShift(ctx context.Context, id string) (ShiftResponse, error)
	ListShifts(ctx context.Context, req ListShiftsRequest) ([]ShiftResponse, error)
	UpdateShift(ctx context.Context, req UpdateShiftRequest) (ShiftResponse, error)
	CancelShift(ctx context.Context, id string) error
}
