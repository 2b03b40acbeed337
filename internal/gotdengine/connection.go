package gotdengine

import (
	"context"
	"errors"
	"fmt"

	"github.com/gotd/td/session"
	"github.com/gotd/td/telegram"
	"github.com/gotd/td/telegram/auth"
	"github.com/gotd/td/telegram/auth/qrlogin"
	"github.com/gotd/td/telegram/dcs"
	"github.com/gotd/td/tg"

	"github.com/blockedby/tgchats/internal/tdapi"
)

// rpc is the subset of tg.Client used by the engine.
type rpc interface {
	MessagesGetDialogs(ctx context.Context, request *tg.MessagesGetDialogsRequest) (tg.MessagesDialogsClass, error)
	ChannelsGetFullChannel(ctx context.Context, channel tg.InputChannelClass) (*tg.MessagesChatFull, error)
	MessagesGetForumTopics(ctx context.Context, request *tg.MessagesGetForumTopicsRequest) (*tg.MessagesForumTopics, error)
	MessagesGetHistory(ctx context.Context, request *tg.MessagesGetHistoryRequest) (tg.MessagesMessagesClass, error)
	AccountGetPassword(ctx context.Context) (*tg.AccountPassword, error)
}

// authenticator is the subset of auth.Client used by the engine.
type authenticator interface {
	Status(ctx context.Context) (*auth.Status, error)
	SendCode(ctx context.Context, phone string, options auth.SendCodeOptions) (tg.AuthSentCodeClass, error)
	SignIn(ctx context.Context, phone, code, codeHash string) (*tg.AuthAuthorization, error)
	Password(ctx context.Context, password string) (*tg.AuthAuthorization, error)
}

// connection is a running MTProto client.
type connection struct {
	api  rpc
	auth authenticator
	self func(ctx context.Context) (*tg.User, error)
	// qr runs the QR login flow, calling show for every new login link.
	qr   func(ctx context.Context, show func(ctx context.Context, link string) error) error
	stop func() error
}

// dialFunc connects to Telegram with the session parameters.
type dialFunc func(ctx context.Context, params *tdapi.SetTdlibParameters, updates *tg.UpdateDispatcher) (*connection, error)

// gotdDialer returns a dialFunc running a gotd client on storage.
func gotdDialer(storage session.Storage) dialFunc {
	return func(ctx context.Context, params *tdapi.SetTdlibParameters, updates *tg.UpdateDispatcher) (*connection, error) {
		if storage == nil {
			storage = &session.StorageMemory{}
		}

		opts := telegram.Options{
			SessionStorage: storage,
			UpdateHandler:  updates,
			Device: telegram.DeviceConfig{
				DeviceModel:    params.DeviceModel,
				SystemVersion:  params.SystemVersion,
				AppVersion:     params.ApplicationVersion,
				SystemLangCode: params.SystemLanguageCode,
				LangCode:       params.SystemLanguageCode,
			},
		}
		if params.UseTestDC {
			opts.DCList = dcs.Test()
		}

		client := telegram.NewClient(params.APIID, params.APIHash, opts)

		runCtx, cancel := context.WithCancel(ctx)
		ready := make(chan struct{})
		done := make(chan error, 1)
		go func() {
			done <- client.Run(runCtx, func(ctx context.Context) error {
				close(ready)
				<-ctx.Done()
				return ctx.Err()
			})
		}()

		select {
		case <-ready:
		case err := <-done:
			cancel()
			return nil, fmt.Errorf("connect to telegram: %w", err)
		case <-ctx.Done():
			cancel()
			<-done
			return nil, ctx.Err()
		}

		return &connection{
			api:  client.API(),
			auth: client.Auth(),
			self: client.Self,
			qr: func(ctx context.Context, show func(ctx context.Context, link string) error) error {
				loggedIn := qrlogin.OnLoginToken(updates)
				_, err := client.QR().Auth(ctx, loggedIn, func(ctx context.Context, token qrlogin.Token) error {
					return show(ctx, token.URL())
				})
				return err
			},
			stop: func() error {
				cancel()
				if err := <-done; err != nil && !errors.Is(err, context.Canceled) {
					return err
				}
				return nil
			},
		}, nil
	}
}
