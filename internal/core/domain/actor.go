package domain

import "github.com/google/uuid"

// Actor - явная идентичность вызывающего. Ядро никогда не лезет в сессию
// или глобальное состояние: кто выполняет операцию, передается параметром.
type Actor struct {
	ID    uuid.UUID
	Admin bool
}
