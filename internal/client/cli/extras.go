package cli

import (
	"context"
	"strings"

	"github.com/dmitrijs2005/statusboard/internal/client/connectivity"
)

func (a *App) Notifications(ctx context.Context, args []string) error {
	if _, err := a.notifications.Sweep(ctx); err != nil {
		return err
	}
	inbox := a.notifications.Inbox()
	if len(inbox) == 0 {
		a.println("Nenhum aviso.")
		return nil
	}
	for _, n := range inbox {
		a.println(describeNotification(n))
	}
	return nil
}

func (a *App) Export(ctx context.Context, args []string) error {
	path, err := a.exporter.Export(ctx)
	if err != nil {
		return err
	}
	a.printf("Exportado para %s\n", path)

	if len(args) == 0 || args[0] != "upload" {
		return nil
	}
	key, err := a.exporter.Upload(ctx, path)
	if err != nil {
		return err
	}
	a.printf("Enviado ao servidor como %s\n", key)
	return nil
}

func (a *App) Chat(ctx context.Context, args []string) error {
	if len(args) > 0 {
		a.println(a.assistant.Reply(ctx, strings.Join(args, " ")))
		return nil
	}

	a.println("Assistente (linha vazia ou 'sair' para voltar)")
	for {
		msg, err := GetSimpleText(a.reader, "você", a.out)
		if err != nil || msg == "" || strings.EqualFold(msg, "sair") {
			return nil
		}
		a.println(a.assistant.Reply(ctx, msg))
	}
}

func (a *App) Mode(ctx context.Context, args []string) error {
	mode := a.router.Mode()
	switch mode {
	case connectivity.ModeOnline:
		a.println("Modo online: os dados vêm do servidor.")
	case connectivity.ModeOffline:
		a.println("Modo offline: servidor inacessível, usando os dados locais.")
	default:
		a.println("Modo local: sem token de acesso, os dados ficam apenas neste computador.")
	}
	if at, ok := a.router.LocalUpdatedAt(ctx); ok {
		a.printf("Dados locais atualizados em %s\n", at.Local().Format("02/01/2006 15:04"))
	}
	if len(args) > 0 && args[0] == "check" && mode != connectivity.ModeDisabled {
		a.printf("Verificado: %s\n", a.mon.Check(ctx))
	}
	return nil
}
