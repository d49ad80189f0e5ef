package audit

import (
	"github.com/gshop/marketplace/internal/audit/repository"
	"github.com/gshop/marketplace/internal/audit/service"
	"go.uber.org/fx"
)

var Module = fx.Module("audit.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.NewService),
)
