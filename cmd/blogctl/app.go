package main

import (
	"errors"
	"fmt"
	"log/slog"

	"blog_admin/internal/config"
	"blog_admin/internal/domain"
	"blog_admin/internal/listing"
	"blog_admin/internal/publisher"
	"blog_admin/internal/remote"
	"blog_admin/internal/service"
	"blog_admin/internal/session"
)

// app wires the configured clients for one command invocation.
type app struct {
	cfg       *config.Config
	logger    *slog.Logger
	transport *remote.Transport
	sessions  *session.File
	auth      *service.AuthService
	rabbit    *publisher.RabbitMQ
}

func newApp(cfg *config.Config, logger *slog.Logger) (*app, error) {
	sessions, err := session.OpenFile(cfg.Auth.SessionFile)
	if err != nil {
		return nil, err
	}

	transport := remote.NewTransport(remote.Config{
		BaseURL:        cfg.Store.BaseURL,
		Timeout:        cfg.Store.Timeout,
		UserAgent:      cfg.Store.UserAgent,
		MaxAttempts:    cfg.Store.Retry.MaxAttempts,
		InitialBackoff: cfg.Store.Retry.InitialBackoff,
		MaxBackoff:     cfg.Store.Retry.MaxBackoff,
	}, logger)

	a := &app{
		cfg:       cfg,
		logger:    logger,
		transport: transport,
		sessions:  sessions,
	}

	if cfg.RabbitMQ.Enabled {
		a.rabbit, err = publisher.NewRabbitMQ(publisher.Config{
			URL:        cfg.RabbitMQ.URL,
			Exchange:   cfg.RabbitMQ.Exchange,
			RoutingKey: cfg.RabbitMQ.RoutingKey,
			QueueName:  cfg.RabbitMQ.QueueName,
			Exclusive:  cfg.RabbitMQ.ExclusiveQueue,
		}, logger)
		if err != nil {
			return nil, err
		}
	}

	a.auth = service.NewAuthService(
		remote.NewCollection[domain.User](transport, cfg.Auth.UsersPath),
		remote.NewCollection[domain.Member](transport, cfg.Collections.Members.Path),
		sessions,
		a.changePublisher(),
		logger,
		cfg.Auth,
	)

	return a, nil
}

// changePublisher returns nil unless RabbitMQ is enabled, so callers never
// hold a typed nil.
func (a *app) changePublisher() service.Publisher {
	if a.rabbit == nil {
		return nil
	}
	return a.rabbit
}

func (a *app) options(pageSize int) listing.Options {
	return listing.Options{
		PageSize:   pageSize,
		AdminEmail: a.cfg.Auth.AdminEmail,
		Publisher:  a.changePublisher(),
		Logger:     a.logger,
	}
}

func (a *app) posts() *listing.Controller[domain.Post] {
	c := a.cfg.Collections.Posts
	return listing.NewController[domain.Post](
		remote.NewCollection[domain.Post](a.transport, c.Path), a.sessions, listing.PostKind(), a.options(c.PageSize))
}

func (a *app) categories() *listing.Controller[domain.Category] {
	c := a.cfg.Collections.Categories
	return listing.NewController[domain.Category](
		remote.NewCollection[domain.Category](a.transport, c.Path), a.sessions, listing.CategoryKind(), a.options(c.PageSize))
}

func (a *app) members() *listing.Controller[domain.Member] {
	c := a.cfg.Collections.Members
	return listing.NewController[domain.Member](
		remote.NewCollection[domain.Member](a.transport, c.Path), a.sessions, listing.MemberKind(), a.options(c.PageSize))
}

func (a *app) discussion() *service.DiscussionService {
	return service.NewDiscussionService(
		remote.NewCollection[domain.Post](a.transport, a.cfg.Collections.Posts.Path),
		remote.NewCollection[domain.User](a.transport, a.cfg.Auth.UsersPath),
		remote.NewCollection[domain.Comment](a.transport, a.cfg.Collections.Comments.Path),
		a.sessions,
		a.changePublisher(),
		a.logger,
		service.DiscussionConfig{
			AdminEmail: a.cfg.Auth.AdminEmail,
			PageSize:   a.cfg.Collections.Comments.PageSize,
		},
	)
}

// requireAdmin guards the admin-only views.
func (a *app) requireAdmin() error {
	if !a.auth.IsAdmin() {
		return fmt.Errorf("admin view: %w", domain.ErrPermission)
	}
	return nil
}

func (a *app) Close() error {
	if a.rabbit != nil {
		return a.rabbit.Close()
	}
	return nil
}

// describe turns the error taxonomy into a short user-facing message.
func describe(err error) string {
	var verr *domain.ValidationError
	var rerr *domain.RemoteError

	switch {
	case errors.As(err, &verr):
		return verr.Error()
	case errors.Is(err, domain.ErrPermission):
		return "you do not have permission to do that"
	case errors.Is(err, domain.ErrNoSession):
		return "not signed in; run `blogctl login` first"
	case errors.Is(err, service.ErrInvalidCredentials):
		return err.Error()
	case errors.Is(err, domain.ErrNotFound):
		return "not found"
	case errors.As(err, &rerr):
		return fmt.Sprintf("store answered %d: %s", rerr.Status, rerr.Body)
	case errors.Is(err, domain.ErrNetwork):
		return "cannot reach the record store: " + err.Error()
	default:
		return err.Error()
	}
}
