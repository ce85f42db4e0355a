package fluentlogger

import (
	"fmt"

	"github.com/fluent/fluent-logger-golang/fluent"
)

// Config хранит конфигурацию подключения к Fluent Bit.
type Config struct {
	Host      string // "127.0.0.1" или имя контейнера в Docker
	Port      int    // По умолчанию 24224
	TagPrefix string // Общий префикс тегов логов этого сервиса

	// Асинхронная отправка: Post не блокируется на недоступном коллекторе
	Async bool
}

// NewClient создает клиент Fluent Bit. Успешное создание не гарантирует
// соединения: ошибки всплывут при первой отправке.
func NewClient(cfg Config) (*fluent.Fluent, error) {
	if cfg.TagPrefix == "" {
		return nil, fmt.Errorf("fluentd tag prefix is required")
	}

	logger, err := fluent.New(fluent.Config{
		FluentHost: cfg.Host,
		FluentPort: cfg.Port,
		TagPrefix:  cfg.TagPrefix,
		Async:      cfg.Async,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create fluentd logger: %w", err)
	}

	return logger, nil
}
