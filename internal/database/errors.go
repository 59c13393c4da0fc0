package database

import "errors"

var (
	// ErrSlotTaken конфликт: интервал пересекается с активной записью.
	// Ожидаемая ошибка под нагрузкой, вызывающий код предлагает выбрать
	// другое время; никогда не путать с недоступностью хранилища.
	ErrSlotTaken = errors.New("slot is already taken")

	// ErrNotFound запись, услуга или пользователь не найдены.
	ErrNotFound = errors.New("not found")

	// ErrServiceInactive услуга выключена и не предлагается клиентам.
	ErrServiceInactive = errors.New("service is not active")

	// ErrPastDate попытка записи на прошедшее время.
	ErrPastDate = errors.New("date is in the past")

	// ErrDateTooFar дата за горизонтом бронирования.
	ErrDateTooFar = errors.New("date is too far in the future")

	// ErrInvalidTransition недопустимый переход статуса записи.
	ErrInvalidTransition = errors.New("invalid status transition")

	// ErrConcurrentModification конфликт версий при обновлении статуса.
	ErrConcurrentModification = errors.New("concurrent modification")

	// ErrInvalidBreak перерыв вне рабочего окна или задан наполовину.
	ErrInvalidBreak = errors.New("invalid break window")
)
