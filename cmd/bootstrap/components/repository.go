package components

import (
	"locker-booking/internal/infra/cache"
	"locker-booking/internal/infra/readstore"
	repo_impl "locker-booking/internal/infra/repository"
	"locker-booking/internal/pkg/config"
	"locker-booking/internal/usecase/commands"
	"locker-booking/internal/usecase/queries"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"go.uber.org/fx"
)

var RepositoryModule = fx.Module("repository",
	fx.Provide(
		fx.Annotate(
			repo_impl.NewBookingRepository,
			fx.As(new(commands.BookingRepository)),
		),
		fx.Annotate(
			NewCachedVenueCatalog,
			fx.As(new(commands.VenueCatalog)),
		),
		// Read-side store for queries
		fx.Annotate(
			readstore.NewBookingReadStore,
			fx.As(new(queries.BookingReadStore)),
		),
	),
)

// NewCachedVenueCatalog layers the Redis read-through cache over the
// postgres-backed catalog.
func NewCachedVenueCatalog(pool *pgxpool.Pool, client *redis.Client, cfg config.Config) *cache.VenueCatalogCache {
	return cache.NewVenueCatalogCache(repo_impl.NewVenueCatalog(pool), client, cfg.Redis.CacheTTL)
}
