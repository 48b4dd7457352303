package setup

import (
	"fmt"
	"time"

	"github.com/itchan-dev/studyboard/internal/config"
	"github.com/itchan-dev/studyboard/internal/domain"
	"github.com/itchan-dev/studyboard/internal/handler"
	"github.com/itchan-dev/studyboard/internal/jwt"
	"github.com/itchan-dev/studyboard/internal/markdown"
	"github.com/itchan-dev/studyboard/internal/middleware"
	"github.com/itchan-dev/studyboard/internal/middleware/ratelimiter"
	"github.com/itchan-dev/studyboard/internal/service"
	"github.com/itchan-dev/studyboard/internal/storage/memory"
	"github.com/itchan-dev/studyboard/internal/utils"
)

// tokens are minted by the login service, the ttl only matters for local tooling
const toolTokenTTL = 24 * time.Hour

// Dependencies struct to hold all initialized dependencies.
// It replaces process-wide singletons: everything is owned by one instance.
type Dependencies struct {
	Config         *config.Config
	Storage        *memory.Storage
	Board          *service.Board
	Review         *service.Review
	Handler        *handler.Handler
	Jwt            jwt.JwtService
	AuthMiddleware *middleware.Auth
	PostLimiter    *ratelimiter.UserRateLimiter
	ReplyLimiter   *ratelimiter.UserRateLimiter
}

// SetupDependencies initializes all dependencies required for the application.
func SetupDependencies(cfg *config.Config) (*Dependencies, error) {
	storage := memory.New(time.Now)
	board := service.NewBoard(storage, service.NewThreadRegistry(), &utils.ThreadNameValidator{}, &utils.ReplyValidator{}, time.Now)
	for _, name := range cfg.Public.Threads {
		if err := board.AddThread(name); err != nil {
			return nil, fmt.Errorf("seed thread %q: %w", name, err)
		}
	}
	for _, username := range cfg.Public.Graders {
		board.SetUserRole(username, domain.RoleGrader)
	}

	review := service.NewReview(time.Now)
	jwtService := jwt.New(cfg.JwtKey(), toolTokenTTL)
	rl := cfg.Public.RateLimit

	return &Dependencies{
		Config:         cfg,
		Storage:        storage,
		Board:          board,
		Review:         review,
		Handler:        handler.New(board, review, markdown.New(), cfg),
		Jwt:            jwtService,
		AuthMiddleware: middleware.NewAuth(jwtService),
		PostLimiter:    ratelimiter.New(rl.PostsPerSecond, rl.Burst, rl.Expiration),
		ReplyLimiter:   ratelimiter.New(rl.RepliesPerSecond, rl.Burst, rl.Expiration),
	}, nil
}

// Close stops background timers.
func (d *Dependencies) Close() {
	d.PostLimiter.Stop()
	d.ReplyLimiter.Stop()
}
