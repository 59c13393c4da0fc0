package service

import (
	"context"
	"os"
	"testing"
	"time"

	"barberbot/internal/database"
	"barberbot/internal/events"
	"barberbot/internal/models"
	"barberbot/internal/schedule"
	"barberbot/internal/timeutil"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type bookingFixture struct {
	svc       *BookingService
	db        *database.DB
	bus       *events.EventBus
	converter *timeutil.Converter
	serviceID int64
}

// setupBooking поднимает сервис на sqlite в памяти с услугой 40+5 минут
// и расписанием 09:00-18:00 без выходных.
func setupBooking(t *testing.T) *bookingFixture {
	t.Helper()
	logger := zerolog.New(os.Stdout)

	db, err := database.NewDB(":memory:", &logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	ctx := context.Background()

	svc := &models.Service{Name: "Стрижка", DurationMin: 40, BufferMin: 5, IsActive: true}
	require.NoError(t, db.CreateService(ctx, svc))

	for wd := 0; wd < 7; wd++ {
		require.NoError(t, db.UpsertScheduleDay(ctx, &models.ScheduleDay{
			Weekday:   wd,
			StartTime: 9 * time.Hour,
			EndTime:   18 * time.Hour,
		}))
	}

	converter := timeutil.NewConverter("UTC", &logger)
	bus := events.NewEventBus()

	return &bookingFixture{
		svc:       NewBookingService(db, bus, converter, 30, &logger),
		db:        db,
		bus:       bus,
		converter: converter,
		serviceID: svc.ID,
	}
}

// futureDate локальная полночь через week дней — всегда внутри горизонта
// и не сегодня, поэтому отсечка "сейчас" не мешает.
func (f *bookingFixture) futureDate(days int) time.Time {
	return f.converter.Today().AddDate(0, 0, days)
}

func TestGetSlots(t *testing.T) {
	f := setupBooking(t)
	ctx := context.Background()
	date := f.futureDate(7)

	slots, err := f.svc.GetSlots(ctx, f.serviceID, date)
	require.NoError(t, err)
	require.NotEmpty(t, slots)

	// 09:00-18:00, шаг 45 минут: первый слот в открытие, все свободны
	first := f.converter.CombineDateClock(date, 9*time.Hour)
	assert.True(t, slots[0].Time.Equal(first))
	for _, slot := range slots {
		assert.True(t, slot.Available)
	}

	second := slots[1].Time
	assert.Equal(t, 45*time.Minute, second.Sub(slots[0].Time))
}

func TestGetSlotsInactiveService(t *testing.T) {
	f := setupBooking(t)
	ctx := context.Background()

	require.NoError(t, f.db.SetServiceActive(ctx, f.serviceID, false))

	_, err := f.svc.GetSlots(ctx, f.serviceID, f.futureDate(7))
	assert.ErrorIs(t, err, database.ErrServiceInactive)
}

func TestGetSlotsUnknownService(t *testing.T) {
	f := setupBooking(t)

	_, err := f.svc.GetSlots(context.Background(), 9999, f.futureDate(7))
	assert.ErrorIs(t, err, database.ErrNotFound)
}

func TestGetSlotsDateValidation(t *testing.T) {
	f := setupBooking(t)
	ctx := context.Background()

	_, err := f.svc.GetSlots(ctx, f.serviceID, f.futureDate(-1))
	assert.ErrorIs(t, err, database.ErrPastDate)

	_, err = f.svc.GetSlots(ctx, f.serviceID, f.futureDate(31))
	assert.ErrorIs(t, err, database.ErrDateTooFar)
}

func TestCreateBooking(t *testing.T) {
	f := setupBooking(t)
	ctx := context.Background()
	date := f.futureDate(7)

	var published []string
	f.bus.Subscribe(events.EventAppointmentCreated, func(e *events.Event) error {
		published = append(published, e.Type)
		return nil
	})

	app, err := f.svc.CreateBooking(ctx, &models.BookingRequest{
		ServiceID:     f.serviceID,
		UserID:        100,
		Date:          date,
		Clock:         9 * time.Hour,
		CustomerName:  "Иван",
		CustomerPhone: "+998901234567",
	})
	require.NoError(t, err)
	require.NotNil(t, app)

	assert.Equal(t, models.StatusPending, app.Status)
	assert.Equal(t, "Стрижка", app.ServiceName)
	assert.Equal(t, models.CreatedByClient, app.CreatedBy)

	wantStart := f.converter.CombineDateClock(date, 9*time.Hour).UTC()
	assert.True(t, app.StartsAt.Equal(wantStart))
	assert.True(t, app.EndsAt.Equal(wantStart.Add(45*time.Minute)))

	assert.Equal(t, []string{events.EventAppointmentCreated}, published)
}

func TestCreateBookingConflict(t *testing.T) {
	f := setupBooking(t)
	ctx := context.Background()
	date := f.futureDate(7)

	req := &models.BookingRequest{
		ServiceID: f.serviceID, UserID: 100, Date: date, Clock: 10 * time.Hour,
		CustomerName: "Иван", CustomerPhone: "+998901234567",
	}
	_, err := f.svc.CreateBooking(ctx, req)
	require.NoError(t, err)

	req2 := &models.BookingRequest{
		ServiceID: f.serviceID, UserID: 200, Date: date, Clock: 10 * time.Hour,
		CustomerName: "Петр", CustomerPhone: "+998907654321",
	}
	_, err = f.svc.CreateBooking(ctx, req2)
	assert.ErrorIs(t, err, database.ErrSlotTaken)
}

func TestBookedSlotBecomesUnavailable(t *testing.T) {
	f := setupBooking(t)
	ctx := context.Background()
	date := f.futureDate(7)

	_, err := f.svc.CreateBooking(ctx, &models.BookingRequest{
		ServiceID: f.serviceID, UserID: 100, Date: date, Clock: 9 * time.Hour,
		CustomerName: "Иван", CustomerPhone: "+998901234567",
	})
	require.NoError(t, err)

	slots, err := f.svc.GetSlots(ctx, f.serviceID, date)
	require.NoError(t, err)
	require.NotEmpty(t, slots)

	assert.False(t, slots[0].Available)
	for _, slot := range slots[1:] {
		assert.True(t, slot.Available)
	}
}

func TestConfirmRejectCompleteFlow(t *testing.T) {
	f := setupBooking(t)
	ctx := context.Background()
	date := f.futureDate(7)

	app, err := f.svc.CreateBooking(ctx, &models.BookingRequest{
		ServiceID: f.serviceID, UserID: 100, Date: date, Clock: 9 * time.Hour,
		CustomerName: "Иван", CustomerPhone: "+998901234567",
	})
	require.NoError(t, err)

	var eventTypes []string
	for _, et := range []string{events.EventAppointmentConfirmed, events.EventAppointmentCompleted} {
		et := et
		f.bus.Subscribe(et, func(e *events.Event) error {
			eventTypes = append(eventTypes, e.Type)
			return nil
		})
	}

	require.NoError(t, f.svc.ConfirmBooking(ctx, app.ID, app.Version, 999))

	got, err := f.svc.GetAppointment(ctx, app.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusConfirmed, got.Status)

	// Повторное действие со старой версией отклоняется
	err = f.svc.RejectBooking(ctx, app.ID, app.Version, 999)
	assert.ErrorIs(t, err, database.ErrConcurrentModification)

	require.NoError(t, f.svc.CompleteBooking(ctx, app.ID, got.Version, 999))

	got, err = f.svc.GetAppointment(ctx, app.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusCompleted, got.Status)

	assert.Equal(t, []string{events.EventAppointmentConfirmed, events.EventAppointmentCompleted}, eventTypes)
}

func TestCancelBooking(t *testing.T) {
	f := setupBooking(t)
	ctx := context.Background()
	date := f.futureDate(7)

	app, err := f.svc.CreateBooking(ctx, &models.BookingRequest{
		ServiceID: f.serviceID, UserID: 100, Date: date, Clock: 9 * time.Hour,
		CustomerName: "Иван", CustomerPhone: "+998901234567",
	})
	require.NoError(t, err)

	// Чужую запись отменить нельзя
	err = f.svc.CancelBooking(ctx, app.ID, 200)
	assert.ErrorIs(t, err, database.ErrNotFound)

	require.NoError(t, f.svc.CancelBooking(ctx, app.ID, 100))

	got, err := f.svc.GetAppointment(ctx, app.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusCancelled, got.Status)

	// Слот освободился сразу
	slots, err := f.svc.GetSlots(ctx, f.serviceID, date)
	require.NoError(t, err)
	assert.True(t, slots[0].Available)
}

func TestRescheduleBooking(t *testing.T) {
	f := setupBooking(t)
	ctx := context.Background()
	date := f.futureDate(7)

	app, err := f.svc.CreateBooking(ctx, &models.BookingRequest{
		ServiceID: f.serviceID, UserID: 100, Date: date, Clock: 9 * time.Hour,
		CustomerName: "Иван", CustomerPhone: "+998901234567",
	})
	require.NoError(t, err)

	updated, err := f.svc.RescheduleBooking(ctx, app.ID, date, 12*time.Hour)
	require.NoError(t, err)

	wantStart := f.converter.CombineDateClock(date, 12*time.Hour).UTC()
	assert.True(t, updated.StartsAt.Equal(wantStart))
	assert.Equal(t, 45*time.Minute, updated.EndsAt.Sub(updated.StartsAt))
}

func TestRescheduleUsesCurrentServiceDuration(t *testing.T) {
	f := setupBooking(t)
	ctx := context.Background()
	date := f.futureDate(7)

	app, err := f.svc.CreateBooking(ctx, &models.BookingRequest{
		ServiceID: f.serviceID, UserID: 100, Date: date, Clock: 9 * time.Hour,
		CustomerName: "Иван", CustomerPhone: "+998901234567",
	})
	require.NoError(t, err)
	require.Equal(t, 45*time.Minute, app.EndsAt.Sub(app.StartsAt))

	// Мастер удлинил услугу; старый интервал остался прежним
	svc, err := f.db.GetServiceByID(ctx, f.serviceID)
	require.NoError(t, err)
	svc.DurationMin = 55
	require.NoError(t, f.db.UpdateService(ctx, svc))

	got, err := f.db.GetAppointment(ctx, app.ID)
	require.NoError(t, err)
	assert.Equal(t, 45*time.Minute, got.EndsAt.Sub(got.StartsAt))

	// Перенос — новое обязательство по текущей длительности
	updated, err := f.svc.RescheduleBooking(ctx, app.ID, date, 12*time.Hour)
	require.NoError(t, err)
	assert.Equal(t, 60*time.Minute, updated.EndsAt.Sub(updated.StartsAt))
}

func TestInactiveServiceKeepsExistingBookings(t *testing.T) {
	f := setupBooking(t)
	ctx := context.Background()
	date := f.futureDate(7)

	app, err := f.svc.CreateBooking(ctx, &models.BookingRequest{
		ServiceID: f.serviceID, UserID: 100, Date: date, Clock: 9 * time.Hour,
		CustomerName: "Иван", CustomerPhone: "+998901234567",
	})
	require.NoError(t, err)

	require.NoError(t, f.db.SetServiceActive(ctx, f.serviceID, false))

	// Существующая запись остается в силе и подтверждается
	require.NoError(t, f.svc.ConfirmBooking(ctx, app.ID, app.Version, 999))

	// Новые записи на выключенную услугу не создаются
	_, err = f.svc.CreateBooking(ctx, &models.BookingRequest{
		ServiceID: f.serviceID, UserID: 200, Date: date, Clock: 14 * time.Hour,
		CustomerName: "Петр", CustomerPhone: "+998907654321",
	})
	assert.ErrorIs(t, err, database.ErrServiceInactive)
}

func TestSlotsOnDayOff(t *testing.T) {
	f := setupBooking(t)
	ctx := context.Background()
	date := f.futureDate(7)

	require.NoError(t, f.db.UpsertScheduleDay(ctx, &models.ScheduleDay{
		Weekday:  schedule.WeekdayIndex(date),
		IsDayOff: true,
	}))

	slots, err := f.svc.GetSlots(ctx, f.serviceID, date)
	require.NoError(t, err)
	assert.Empty(t, slots)
}
