package main

import (
	"context"
	"fmt"
	"text/tabwriter"

	"github.com/pkg/errors"

	"github.com/trezcool/scholarhelp/core/user"
)

func (cli *commandLine) addUser(ctx context.Context, nu user.NewUser, isHelper bool) error {
	if err := cli.checkInput(nu.Validate(cli.validate)); err != nil {
		return err
	}
	svc, err := cli.users(ctx)
	if err != nil {
		return err
	}

	usr, err := svc.Register(ctx, nu)
	if err != nil {
		return err
	}
	if isHelper {
		if usr, err = svc.SetHelperFlag(ctx, usr.ID, true); err != nil {
			return err
		}
	}
	fmt.Fprintf(cli.out, "user %q created (id %s)\n", usr.Username, usr.ID)
	return nil
}

func (cli *commandLine) resetPassword(ctx context.Context, pr user.PasswordReset) error {
	svc, err := cli.users(ctx)
	if err != nil {
		return err
	}
	usr, err := svc.GetByUsername(ctx, pr.Username)
	if err != nil {
		return err
	}

	// the policy checks similarity against the stored username
	pr.Username = usr.Username
	if err := cli.checkInput(pr.Validate(cli.validate)); err != nil {
		return err
	}
	if _, err := svc.ResetPassword(ctx, usr.ID, pr.Password); err != nil {
		return errors.Wrap(err, "resetting password")
	}
	fmt.Fprintf(cli.out, "password of %q updated\n", usr.Username)
	return nil
}

func (cli *commandLine) setHelper(ctx context.Context, uname string, isHelper bool) error {
	svc, err := cli.users(ctx)
	if err != nil {
		return err
	}
	usr, err := svc.GetByUsername(ctx, uname)
	if err != nil {
		return err
	}
	if usr, err = svc.SetHelperFlag(ctx, usr.ID, isHelper); err != nil {
		return err
	}
	fmt.Fprintf(cli.out, "%q is_helper=%t\n", usr.Username, usr.IsHelper)
	return nil
}

func (cli *commandLine) list(ctx context.Context, helpers, needingHelp bool) error {
	svc, err := cli.users(ctx)
	if err != nil {
		return err
	}

	var users []user.User
	switch {
	case helpers:
		users = svc.ListHelpers(ctx)
	case needingHelp:
		users = svc.ListNeedingHelp(ctx)
	default:
		users = svc.QueryAll(ctx)
	}

	w := tabwriter.NewWriter(cli.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tUSERNAME\tGRADE\tHELPER")
	for _, usr := range users {
		fmt.Fprintf(w, "%s\t%s\t%s\t%t\n", usr.ID, usr.Username, usr.Grade, usr.IsHelper)
	}
	return w.Flush()
}
