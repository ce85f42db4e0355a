package constants

// Обменник исходящих событий торгового ядра
const (
	MarketEventsExchange     = "land_market_events"
	MarketEventsExchangeType = "topic"
)

// Ключи маршрутизации
const (
	RoutingKeyNotifications = "notify.user"
	RoutingKeyAuditLog      = "audit.record"
)
