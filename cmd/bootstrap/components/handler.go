package components

import (
	"locker-booking/internal/handler"
	"locker-booking/internal/handler/api"
	"locker-booking/internal/handler/middleware"
	"locker-booking/internal/pkg/jwt"

	"go.uber.org/fx"
)

var HandlerModule = fx.Module("handler",
	fx.Provide(
		api.NewBookingHandler,
		func(s *jwt.Service) middleware.TokenValidator { return s },
		middleware.NewAuthMiddleware,
	),
	fx.Invoke(handler.NewRouter),
)
