// Package main is the headless storefront client: it drives the login,
// registration, and session flows against the backend from the terminal.
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/dulceria/storefront/internal/client/api"
	"github.com/dulceria/storefront/internal/client/login"
	"github.com/dulceria/storefront/internal/client/register"
	"github.com/dulceria/storefront/internal/client/route"
	"github.com/dulceria/storefront/internal/client/session"
	"github.com/dulceria/storefront/internal/config"
	"github.com/dulceria/storefront/internal/logger"
	"go.uber.org/zap"
)

var (
	version   string
	buildDate string
)

// app bundles the wired client-side components.
type app struct {
	store   *session.Store
	api     *api.Client
	nav     *route.History
	breach  *register.BreachChecker
	scanner *bufio.Scanner
	log     *zap.Logger
}

func (a *app) prompt(label string) string {
	fmt.Print(label)
	if !a.scanner.Scan() {
		return ""
	}
	return strings.TrimSpace(a.scanner.Text())
}

// loginFlow walks the two-step login sequence interactively.
func (a *app) loginFlow(ctx context.Context) {
	flow := login.NewFlow(a.api, a.store)

	for {
		email := a.prompt("correo: ")
		password := a.prompt("contraseña: ")

		result, err := flow.SubmitCredentials(ctx, email, password)
		if err != nil {
			fmt.Println("error:", err)
			continue
		}
		if result.LoggedIn {
			a.nav.Replace(route.ForRole(result.Role))
			fmt.Println("Sesión iniciada. Ruta:", a.nav.Current())
			return
		}
		if !result.SecondFactor {
			fmt.Println(result.Message)
			continue
		}

		// Second factor: prompt for the 6-digit code until success or
		// the user backs out.
		for flow.Step() == login.StepSecondFactor {
			code := a.prompt("código TOTP (6 dígitos, vacío para volver): ")
			if code == "" {
				flow.Cancel()
				break
			}
			result, err := flow.SubmitCode(ctx, code)
			if err != nil {
				fmt.Println("error:", err)
				continue
			}
			if result.LoggedIn {
				a.nav.Replace(route.ForRole(result.Role))
				fmt.Println("Sesión iniciada. Ruta:", a.nav.Current())
				return
			}
			fmt.Println(result.Message)
		}
	}
}

// registerFlow collects the registration fields, validating each one the
// way the form does, then submits through the guard.
func (a *app) registerFlow(ctx context.Context) {
	draft := register.NewDraft()

	fields := []struct {
		name  string
		label string
	}{
		{register.FieldName, "nombre: "},
		{register.FieldPaternalSurname, "apellido paterno: "},
		{register.FieldMaternalSurname, "apellido materno: "},
		{register.FieldPhone, "teléfono (10 dígitos): "},
		{register.FieldEmail, "correo: "},
		{register.FieldPassword, "contraseña: "},
		{register.FieldSecretQuestion, "pregunta secreta: "},
		{register.FieldSecretAnswer, "respuesta secreta: "},
	}

	for _, f := range fields {
		for {
			draft.SetField(f.name, a.prompt(f.label))
			if msg := draft.FieldError(f.name); msg != "" {
				fmt.Println(msg)
				continue
			}
			if f.name == register.FieldPassword {
				fmt.Printf("fortaleza: %d/4\n", draft.Strength())
				if msg := draft.GateError(); msg != "" {
					fmt.Println(msg)
					continue
				}
			}
			break
		}
	}

	guard := register.NewGuard(a.api, a.breach)
	outcome := guard.Submit(ctx, draft)
	if !outcome.OK {
		fmt.Println(outcome.Message)
		return
	}
	a.nav.Replace(outcome.Route)
	fmt.Printf("Registro exitoso como %s. Revisa tu correo. Ruta: %s\n", outcome.Role, a.nav.Current())
}

// whoami bootstraps the persisted session and prints the result.
func (a *app) whoami(ctx context.Context) {
	boot := session.NewBootstrapper(a.store, a.api, a.nav, a.log)
	boot.Run(ctx, a.nav.Current())

	state := a.store.Snapshot()
	if !state.LoggedIn() {
		fmt.Println("No hay sesión activa.")
		return
	}
	u := state.User
	fmt.Printf("%s %s %s <%s> · %s · %s\n", u.Name, u.PaternalSurname, u.MaternalSurname, u.Email, u.Role, u.Status)
	fmt.Println("Ruta:", a.nav.Current())
}

func main() {
	var cmd string
	flag.StringVar(&cmd, "cmd", "", "command: login | register | whoami | logout")
	showVer := flag.Bool("version", false, "show build version and date")

	options := config.Parse()

	if *showVer {
		fmt.Printf("Dulcería Client\nVersion: %s\nBuild Date: %s\n", version, buildDate)
		return
	}

	zapLogger, err := logger.New("warn")
	if err != nil {
		log.Fatal(err)
	}
	defer func() { _ = zapLogger.Sync() }()

	creds := session.NewFileStore(options.CredentialsFile)
	a := &app{
		store:   session.NewStore(creds, zapLogger),
		api:     api.New(options.BaseURL, nil, zapLogger),
		nav:     route.NewHistory(route.Root),
		breach:  register.NewBreachChecker(register.DefaultBreachURL, nil, zapLogger),
		scanner: bufio.NewScanner(os.Stdin),
		log:     zapLogger,
	}

	ctx := context.Background()

	switch cmd {
	case "login":
		a.nav.Replace(route.Login)
		a.loginFlow(ctx)
	case "register":
		a.nav.Replace(route.Register)
		a.registerFlow(ctx)
	case "whoami":
		a.whoami(ctx)
	case "logout":
		a.store.Logout()
		a.nav.Replace(route.Root)
		fmt.Println("Sesión cerrada.")
	default:
		log.Fatalf("unknown command: %s", cmd)
	}
}
