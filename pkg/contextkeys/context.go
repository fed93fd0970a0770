package contextkeys

type contextKey string

// DBContextKey - ключ, по которому *gorm.DB хранится в context
const DBContextKey = contextKey("db")

// UserIDContextKey - ключ идентификатора пользователя в gin.Context
const UserIDContextKey = "userID"
