package verification

import (
	"github.com/gshop/marketplace/internal/verification/service"
	"go.uber.org/fx"
)

var Module = fx.Module("verification.service",
	fx.Provide(service.NewService),
)
