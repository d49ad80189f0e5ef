package platformconfig

import (
	"github.com/gshop/marketplace/internal/platformconfig/domain"
	"github.com/gshop/marketplace/internal/platformconfig/repository"
	"github.com/gshop/marketplace/internal/platformconfig/service"
	"go.uber.org/fx"
)

var Module = fx.Module("platformconfig.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.NewService),
	fx.Provide(func(s *service.Service) domain.Service { return s }),
	fx.Provide(func(s *service.Service) domain.RateProvider { return s }),
	fx.Provide(func(s *service.Service) domain.SequenceAllocator { return s }),
)
