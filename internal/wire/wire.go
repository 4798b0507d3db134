//go:build wireinject
// +build wireinject

package wire

import (
	"github.com/google/wire"

	"legado/internal/dbmysql"
	"legado/internal/message"
	"legado/internal/profile"
)

func InitializeApplication() (*Application, error) {
	wire.Build(
		ProvideConfig,
		ProvideRateLimiter,
		dbmysql.NewMySQL,
		dbmysql.NewProfileRepository,
		dbmysql.NewMessageRepository,
		dbmysql.NewDeliveryRuleRepository,
		dbmysql.NewRecipientRepository,
		dbmysql.NewTrustedContactRepository,
		dbmysql.NewCheckinRepository,
		dbmysql.NewAuditRepository,
		ProvideAuditLogger,
		ProvideSender,
		ProvideDispatcher,
		ProvideCheckinService,
		ProvideDeliveryEngine,
		ProvideMessageService,
		ProvideProfileService,
		ProvideMediaServer,
		message.NewHandler,
		profile.NewHandler,
		ProvideCheckinHandler,
		ProvideAuditHandler,
		wire.Struct(new(Application), "*"),
	)
	return &Application{}, nil
}
