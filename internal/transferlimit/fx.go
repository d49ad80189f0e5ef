package transferlimit

import (
	"github.com/gshop/marketplace/internal/transferlimit/service"
	"go.uber.org/fx"
)

var Module = fx.Module("transferlimit.service",
	fx.Provide(service.NewService),
)
