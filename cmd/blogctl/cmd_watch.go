package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os/signal"
	"sync"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"blog_admin/internal/publisher"
	"blog_admin/internal/scheduler"
)

var watchCmd = &cobra.Command{
	Use:       "watch [posts|categories|members]",
	Short:     "Keep a list on screen, reloading on a timer and on change events",
	Args:      cobra.MaximumNArgs(1),
	ValidArgs: []string{"posts", "categories", "members"},
	RunE:      runWatch,
}

type loadFunc func(ctx context.Context) error

// renderingLoader reloads a view and prints it afterwards.
type renderingLoader struct {
	name   string
	load   loadFunc
	render func(w io.Writer)
	out    io.Writer

	mu sync.Mutex
}

func (l *renderingLoader) Name() string { return l.name }

func (l *renderingLoader) Load(ctx context.Context) error {
	if err := l.load(ctx); err != nil {
		return err
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(l.out, "\n== %s ==\n", l.name)
	l.render(l.out)
	return nil
}

func watchLoader(name string, out io.Writer) (*renderingLoader, func(), error) {
	switch name {
	case "posts":
		c := current.posts()
		c.SetFilter(listFilter)
		return &renderingLoader{name: name, load: c.Load, out: out,
			render: func(w io.Writer) { renderPosts(w, c.View()) }}, c.Close, nil
	case "categories":
		if err := current.requireAdmin(); err != nil {
			return nil, nil, err
		}
		c := current.categories()
		return &renderingLoader{name: name, load: c.Load, out: out,
			render: func(w io.Writer) { renderCategories(w, c.View()) }}, c.Close, nil
	case "members":
		if err := current.requireAdmin(); err != nil {
			return nil, nil, err
		}
		c := current.members()
		return &renderingLoader{name: name, load: c.Load, out: out,
			render: func(w io.Writer) { renderMembers(w, c.View()) }}, c.Close, nil
	default:
		return nil, nil, fmt.Errorf("unknown collection %q", name)
	}
}

func runWatch(cmd *cobra.Command, args []string) error {
	name := "posts"
	if len(args) == 1 {
		name = args[0]
	}

	loader, closeView, err := watchLoader(name, cmd.OutOrStdout())
	if err != nil {
		return err
	}
	defer closeView()

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)

	sched := scheduler.NewScheduler(current.cfg.Refresh.Interval, current.cfg.Refresh.Timeout, current.logger, loader)
	g.Go(func() error {
		return sched.Start(ctx)
	})

	if current.rabbit != nil {
		msgs, err := current.rabbit.Deliveries("blogctl-watch")
		if err != nil {
			return err
		}
		consumer := publisher.NewConsumer(current.logger)
		consumer.Register(name, loader)
		g.Go(func() error {
			return consumer.Run(ctx, msgs)
		})
	}

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

func init() {
	watchCmd.Flags().StringVarP(&listFilter.Search, "search", "s", "", "Search text, accents ignored")
	watchCmd.Flags().StringVar(&listFilter.Category, "category", "", "Only this category (posts)")
	watchCmd.Flags().BoolVar(&listFilter.MineOnly, "mine", false, "Only records you own (posts)")
}
