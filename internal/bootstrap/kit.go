package bootstrap

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	goredis "github.com/redis/go-redis/v9"

	"github.com/modernstarter/sessionkit/config"
	"github.com/modernstarter/sessionkit/internal/adapters/httpapi"
	"github.com/modernstarter/sessionkit/internal/adapters/memory"
	"github.com/modernstarter/sessionkit/internal/adapters/mockauth"
	redisstore "github.com/modernstarter/sessionkit/internal/adapters/redis"
	domainauth "github.com/modernstarter/sessionkit/internal/domain/auth"
	"github.com/modernstarter/sessionkit/internal/gateway"
	"github.com/modernstarter/sessionkit/internal/observability/notify"
	"github.com/modernstarter/sessionkit/internal/observability/notify/slack"
	"github.com/modernstarter/sessionkit/internal/ports"
	"github.com/modernstarter/sessionkit/internal/service"
	"github.com/modernstarter/sessionkit/internal/ui"
)

// Kit is the fully wired session toolkit: storage, boundary, auth client,
// gateway, and UI state assembled from AppConfig.
type Kit struct {
	Config  config.AppConfig
	Logger  *slog.Logger
	Tokens  ports.TokenStore
	Prefs   ports.KeyValue
	API     ports.AuthAPI
	Auth    *service.AuthClient
	Gateway *gateway.Gateway
	UI      *ui.Store

	redis *goredis.Client
}

// BuildOptions tune Kit assembly beyond what AppConfig carries.
type BuildOptions struct {
	Logger *slog.Logger

	// Navigator receives the re-authentication signal; nil logs it.
	Navigator ports.Navigator

	// ExtraSinks are appended to the notification fan-out.
	ExtraSinks []notify.Sink
}

// Build assembles a Kit from configuration.
func Build(cfg config.AppConfig, opts BuildOptions) (*Kit, error) {
	logger := opts.Logger
	if logger == nil {
		logger = InitLogger(cfg.IsDev)
	}

	kit := &Kit{Config: cfg, Logger: logger}

	if err := kit.wireStorage(); err != nil {
		return nil, err
	}
	if err := kit.wireBoundary(); err != nil {
		kit.Close()
		return nil, err
	}

	kit.UI = ui.NewStore(ui.Options{
		Prefs:            kit.Prefs,
		ThemeKey:         cfg.UI.ThemeStorageKey,
		DefaultTheme:     ui.Theme(cfg.UI.DefaultTheme),
		MaxNotifications: cfg.UI.MaxNotifications,
		Logger:           logger,
	})

	kit.Auth = service.NewAuthClient(service.AuthClientOptions{
		API:    kit.API,
		Tokens: kit.Tokens,
		Logger: logger,
	})

	notifier, err := kit.buildNotifier(opts.ExtraSinks)
	if err != nil {
		kit.Close()
		return nil, err
	}

	navigator := opts.Navigator
	if navigator == nil {
		loginPath := cfg.Auth.LoginPath
		navigator = ports.NavigatorFunc(func(ctx context.Context) {
			logger.InfoContext(ctx, "re-authentication required", "path", loginPath)
		})
	}

	kit.Gateway = gateway.New(gateway.Options{
		BaseURL:   cfg.API.BaseURL,
		Client:    &http.Client{Timeout: cfg.API.Timeout},
		Tokens:    kit.Tokens,
		API:       kit.API,
		Auth:      kit.Auth,
		Navigator: navigator,
		Notifier:  notifier,
		Logger:    logger,
	})

	return kit, nil
}

// Close releases held connections. Safe to call on a partially built Kit.
func (k *Kit) Close() error {
	if k.redis != nil {
		return k.redis.Close()
	}
	return nil
}

func (k *Kit) wireStorage() error {
	if !k.Config.Redis.Enabled {
		k.Tokens = memory.NewTokenStore()
		k.Prefs = memory.NewKeyValue()
		return nil
	}

	client := goredis.NewClient(&goredis.Options{
		Addr:     k.Config.Redis.Addr,
		Password: k.Config.Redis.Password,
		DB:       k.Config.Redis.DB,
	})
	k.redis = client

	prefix := k.Config.Redis.KeyPrefix
	tokens, err := redisstore.NewTokenStore(
		client,
		prefix+":"+k.Config.Auth.TokenKeys.Access,
		prefix+":"+k.Config.Auth.TokenKeys.Refresh,
	)
	if err != nil {
		return fmt.Errorf("wire redis token store: %w", err)
	}
	k.Tokens = tokens
	k.Prefs = redisstore.NewKeyValue(client, prefix+":prefs")
	return nil
}

func (k *Kit) wireBoundary() error {
	if !k.Config.API.EnableMock {
		client, err := httpapi.NewClient(httpapi.Config{
			BaseURL: k.Config.API.BaseURL,
			Timeout: k.Config.API.Timeout,
		})
		if err != nil {
			return fmt.Errorf("wire http boundary: %w", err)
		}
		k.API = client
		return nil
	}

	mock := k.Config.Auth.Mock
	role := domainauth.RoleUser
	if mock.Role == string(domainauth.RoleAdmin) {
		role = domainauth.RoleAdmin
	}
	provider, err := mockauth.NewProvider(mockauth.Config{
		Email:    mock.Email,
		Password: mock.Password,
		User: domainauth.User{
			ID:          mock.UserID,
			Email:       mock.Email,
			DisplayName: mock.DisplayName,
			Role:        role,
			Permissions: mock.Permissions,
		},
		SigningKey: []byte(mock.SigningKey),
	})
	if err != nil {
		return fmt.Errorf("wire mock boundary: %w", err)
	}
	k.API = provider
	return nil
}

func (k *Kit) buildNotifier(extra []notify.Sink) (notify.Sink, error) {
	sinks := []notify.Sink{k.UI.NotifySink()}

	notifications := k.Config.Observability.Notifications
	if notifications.Slack.Enabled {
		client, err := slack.NewClient(slack.Config{
			WebhookURL: notifications.Slack.WebhookURL,
			Channel:    notifications.Slack.Channel,
			Username:   notifications.Slack.Username,
			Timeout:    notifications.Timeout,
			RetryLimit: notifications.RetryLimit,
		})
		if err != nil {
			return nil, fmt.Errorf("wire slack sink: %w", err)
		}
		sinks = append(sinks, client)
	}

	sinks = append(sinks, extra...)
	return notify.Multi(sinks...), nil
}
