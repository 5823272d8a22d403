// Package application assembles the command and query handlers that make up
// the Study Hub use cases.
package application

import (
	"github.com/alem-hub/studyhub/internal/application/command"
	"github.com/alem-hub/studyhub/internal/application/query"
	"github.com/alem-hub/studyhub/internal/domain/streak"
	"github.com/alem-hub/studyhub/pkg/logger"
)

// Options configures New.
type Options struct {
	Commands command.Deps
	Queries  query.Deps

	StreakPolicy streak.Policy

	// StatsCache may be nil.
	StatsCache query.StatsCache
	Logger     *logger.Logger
}

// App groups every use case handler.
type App struct {
	RegisterUser     *command.RegisterUserHandler
	UpdateProfile    *command.UpdateProfileHandler
	UpdateStreak     *command.UpdateStreakHandler
	CreateGroup      *command.CreateGroupHandler
	JoinGroup        *command.JoinGroupHandler
	CreateSession    *command.CreateSessionHandler
	JoinSession      *command.JoinSessionHandler
	CompleteSession  *command.CompleteSessionHandler
	UploadResource   *command.UploadResourceHandler
	DownloadResource *command.DownloadResourceHandler
	TransferTokens   *command.TransferTokensHandler

	Users         *query.UserQueries
	Groups        *query.GroupQueries
	Matches       *query.FindStudyMatchesHandler
	PlatformStats *query.PlatformStatsHandler
}

// New builds the handlers over shared dependencies.
func New(opts Options) *App {
	c, q := opts.Commands, opts.Queries
	return &App{
		RegisterUser:     command.NewRegisterUserHandler(c),
		UpdateProfile:    command.NewUpdateProfileHandler(c),
		UpdateStreak:     command.NewUpdateStreakHandler(c, opts.StreakPolicy),
		CreateGroup:      command.NewCreateGroupHandler(c),
		JoinGroup:        command.NewJoinGroupHandler(c),
		CreateSession:    command.NewCreateSessionHandler(c),
		JoinSession:      command.NewJoinSessionHandler(c),
		CompleteSession:  command.NewCompleteSessionHandler(c),
		UploadResource:   command.NewUploadResourceHandler(c),
		DownloadResource: command.NewDownloadResourceHandler(c),
		TransferTokens:   command.NewTransferTokensHandler(c),

		Users:         query.NewUserQueries(q),
		Groups:        query.NewGroupQueries(q),
		Matches:       query.NewFindStudyMatchesHandler(q),
		PlatformStats: query.NewPlatformStatsHandler(q, opts.StatsCache, opts.Logger),
	}
}
