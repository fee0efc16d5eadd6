// Package capability отображает роль пользователя в набор прав:
// кто может учиться, а кто — проводить сессии. Чистая функция без состояния,
// используется планировщиком для авторизации сторон бронирования.
package capability

import "github.com/magabrotheeeer/skillswap/internal/models"

// Set набор прав, выведенный из роли пользователя.
type Set struct {
	CanLearn  bool // Может бронировать сессии как ученик
	CanMentor bool // Может проводить сессии как наставник
}

// Resolve возвращает права для роли. Неизвестная роль не даёт прав.
func Resolve(role models.Role) Set {
	switch role {
	case models.RoleLearner:
		return Set{CanLearn: true}
	case models.RoleMentor:
		return Set{CanMentor: true}
	case models.RoleBoth:
		return Set{CanLearn: true, CanMentor: true}
	}
	return Set{}
}
