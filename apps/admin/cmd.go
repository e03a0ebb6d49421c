package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"strings"
	"syscall"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"golang.org/x/term"

	"github.com/trezcool/scholarhelp/core"
	"github.com/trezcool/scholarhelp/core/user"
)

var (
	readPasswordFunc = term.ReadPassword // mockable

	errHelp = errors.New("help provided")
)

type commandLine struct {
	db         *sqlx.DB // nil with the in-memory engine
	usrRepo    user.Repository
	usrSvc     *user.Service
	logger     core.Logger
	validate   *validator.Validate
	translator ut.Translator
	out        io.Writer
}

func (cli *commandLine) printUsage() {
	fmt.Fprintln(cli.out, "Usage:")
	fmt.Fprintln(cli.out, "  migrate COMMAND [ARGS] - run goose migrations (up, up-by-one, up-to VERSION, down, down-to VERSION, redo, reset, status, version)")
	fmt.Fprintln(cli.out, "  adduser -username USERNAME [-helper] - create a user, the password is prompted next")
	fmt.Fprintln(cli.out, "  resetpassword -username USERNAME - reset user's password")
	fmt.Fprintln(cli.out, "  helper -username USERNAME [-off] - flag (or unflag) a user as peer helper")
	fmt.Fprintln(cli.out, "  list [-helpers|-needing-help] - list users")
}

func (cli *commandLine) run(args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}

	ctx := context.Background()

	addUserCmd := flag.NewFlagSet("adduser", flag.ContinueOnError)
	addUserUname := addUserCmd.String("username", "", "The new user's username. The password will be prompted next.")
	addUserHelper := addUserCmd.Bool("helper", false, "Flag the new user as peer helper.")

	resetPasswordCmd := flag.NewFlagSet("resetpassword", flag.ContinueOnError)
	resetPasswordUname := resetPasswordCmd.String("username", "", "The user's username. The password will be prompted next.")

	helperCmd := flag.NewFlagSet("helper", flag.ContinueOnError)
	helperUname := helperCmd.String("username", "", "The user's username.")
	helperOff := helperCmd.Bool("off", false, "Unflag the user.")

	listCmd := flag.NewFlagSet("list", flag.ContinueOnError)
	listHelpers := listCmd.Bool("helpers", false, "Only list peer helpers.")
	listNeedingHelp := listCmd.Bool("needing-help", false, "Only list users graded D or F.")

	for _, fs := range []*flag.FlagSet{addUserCmd, resetPasswordCmd, helperCmd, listCmd} {
		fs.SetOutput(cli.out)
	}

	switch args[1] {
	case "migrate":
		if len(args) < 3 {
			cli.printUsage()
			return errHelp
		}
		return cli.migrate(args[2:])

	case "adduser":
		if err := addUserCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *addUserUname == "" {
			addUserCmd.Usage()
			return errHelp
		}
		pwd, confirm, err := cli.promptPassword()
		if err != nil {
			return err
		}
		if pwd == "" {
			addUserCmd.Usage()
			return errHelp
		}
		return cli.addUser(ctx, user.NewUser{Username: *addUserUname, Password: pwd, PasswordConfirm: confirm}, *addUserHelper)

	case "resetpassword":
		if err := resetPasswordCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *resetPasswordUname == "" {
			resetPasswordCmd.Usage()
			return errHelp
		}
		pwd, confirm, err := cli.promptPassword()
		if err != nil {
			return err
		}
		if pwd == "" {
			resetPasswordCmd.Usage()
			return errHelp
		}
		return cli.resetPassword(ctx, user.PasswordReset{Username: *resetPasswordUname, Password: pwd, PasswordConfirm: confirm})

	case "helper":
		if err := helperCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *helperUname == "" {
			helperCmd.Usage()
			return errHelp
		}
		return cli.setHelper(ctx, *helperUname, !*helperOff)

	case "list":
		if err := listCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *listHelpers && *listNeedingHelp {
			listCmd.Usage()
			return errHelp
		}
		return cli.list(ctx, *listHelpers, *listNeedingHelp)

	default:
		cli.printUsage()
		return errHelp
	}
}

func (cli *commandLine) promptPassword() (pwd, confirm string, err error) {
	fmt.Fprint(cli.out, "Enter password:")
	p, err := readPasswordFunc(int(syscall.Stdin))
	fmt.Fprintln(cli.out)
	if err != nil || len(p) == 0 {
		return "", "", err
	}

	fmt.Fprint(cli.out, "Confirm password:")
	c, err := readPasswordFunc(int(syscall.Stdin))
	fmt.Fprintln(cli.out)
	if err != nil {
		return "", "", err
	}
	return string(p), string(c), nil
}

// users loads the user directory on first use, so that "migrate" works on an empty database.
func (cli *commandLine) users(ctx context.Context) (*user.Service, error) {
	if cli.usrSvc == nil {
		svc, err := user.NewService(ctx, cli.usrRepo, cli.logger)
		if err != nil {
			return nil, err
		}
		cli.usrSvc = svc
	}
	return cli.usrSvc, nil
}

// checkInput turns validator errors into a readable *core.ValidationError.
func (cli *commandLine) checkInput(err error) error {
	if err == nil {
		return nil
	}
	var vErrs validator.ValidationErrors
	if !errors.As(err, &vErrs) {
		return err
	}
	return core.NewValidationError(nil, core.TranslateFieldErrors(vErrs, cli.translator)...)
}

// describeError renders err for the terminal, listing field errors one per line.
func describeError(err error) string {
	var vErr *core.ValidationError
	if !errors.As(err, &vErr) || len(vErr.Fields) == 0 {
		return err.Error()
	}
	lines := make([]string, 0, len(vErr.Fields)+1)
	lines = append(lines, vErr.Error())
	for _, fErr := range vErr.Fields {
		lines = append(lines, "  "+fErr.Field+": "+fErr.Error)
	}
	return strings.Join(lines, "\n")
}
