package models

// UserRole соответствует значению claim "role" в JWT.
// Сами учётные записи живут во внешнем сервисе идентификации;
// ядру достаточно id пользователя и его роли.
type UserRole string

const (
	RoleAdmin  UserRole = "admin"
	RolePlayer UserRole = "player"
)
