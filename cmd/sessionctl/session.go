package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	domainauth "github.com/modernstarter/sessionkit/internal/domain/auth"
	"github.com/modernstarter/sessionkit/internal/token"
	"github.com/modernstarter/sessionkit/internal/ui"
	"github.com/modernstarter/sessionkit/internal/util"
)

type loginOptions struct {
	Email    string
	Password string
}

type profileSetOptions struct {
	Name   string
	Avatar string
	Email  string
}

type themeOptions struct {
	Set string
}

func runLogin(cmdCtx *commandContext, args []string) error {
	opts, err := parseLoginFlags(args)
	if err != nil {
		return err
	}

	user, err := cmdCtx.Kit.Auth.Login(cmdCtx.Ctx, opts.Email, opts.Password)
	if err != nil {
		return fmt.Errorf("login: %w", err)
	}

	if err := writef(os.Stdout, "Signed in as %s <%s> (role: %s)\n", user.DisplayName, user.Email, user.Role); err != nil {
		return err
	}
	return printStoredTokenSummary(cmdCtx)
}

func runLogout(cmdCtx *commandContext, _ []string) error {
	if err := cmdCtx.Kit.Auth.Logout(cmdCtx.Ctx); err != nil {
		return fmt.Errorf("logout: %w", err)
	}
	return writef(os.Stdout, "Signed out\n")
}

func runWhoami(cmdCtx *commandContext, _ []string) error {
	if !cmdCtx.Kit.Auth.CheckAuth(cmdCtx.Ctx) {
		session := cmdCtx.Kit.Auth.Sessions().Current()
		if session.LastError != "" {
			return fmt.Errorf("not signed in: %s", session.LastError)
		}
		return errors.New("not signed in")
	}

	session := cmdCtx.Kit.Auth.Sessions().Current()
	user := session.User
	if err := writef(os.Stdout, "ID:          %s\n", user.ID); err != nil {
		return err
	}
	if err := writef(os.Stdout, "Name:        %s\n", user.DisplayName); err != nil {
		return err
	}
	if err := writef(os.Stdout, "Email:       %s\n", user.Email); err != nil {
		return err
	}
	if err := writef(os.Stdout, "Role:        %s\n", user.Role); err != nil {
		return err
	}
	return writef(os.Stdout, "Permissions: %v\n", user.Permissions)
}

func runProfileSet(cmdCtx *commandContext, args []string) error {
	opts, err := parseProfileSetFlags(args)
	if err != nil {
		return err
	}

	patch := domainauth.ProfilePatch{}
	if opts.Name != "" {
		patch.DisplayName = domainauth.StringPtr(opts.Name)
	}
	if opts.Avatar != "" {
		patch.AvatarURL = domainauth.StringPtr(opts.Avatar)
	}
	if opts.Email != "" {
		patch.Email = domainauth.StringPtr(opts.Email)
	}
	if patch.IsZero() {
		return errors.New("nothing to update: pass -name, -avatar, or -email")
	}

	// Each invocation starts with an empty session; rebuild it from the
	// stored token before patching.
	if !cmdCtx.Kit.Auth.CheckAuth(cmdCtx.Ctx) {
		return errors.New("not signed in")
	}

	user, err := cmdCtx.Kit.Auth.UpdateProfile(cmdCtx.Ctx, patch)
	if err != nil {
		return fmt.Errorf("update profile: %w", err)
	}
	return writef(os.Stdout, "Profile updated: %s <%s>\n", user.DisplayName, user.Email)
}

func runTokenShow(cmdCtx *commandContext, _ []string) error {
	return printStoredTokenSummary(cmdCtx)
}

func runTheme(cmdCtx *commandContext, args []string) error {
	opts, err := parseThemeFlags(args)
	if err != nil {
		return err
	}

	cmdCtx.Kit.UI.Hydrate(cmdCtx.Ctx)

	if opts.Set != "" {
		mode := ui.Theme(opts.Set)
		if mode != ui.ThemeLight && mode != ui.ThemeDark {
			return fmt.Errorf("invalid theme %q (valid options: light, dark)", opts.Set)
		}
		cmdCtx.Kit.UI.SetTheme(cmdCtx.Ctx, mode)
	}

	return writef(os.Stdout, "Theme: %s\n", cmdCtx.Kit.UI.Current().Theme)
}

func printStoredTokenSummary(cmdCtx *commandContext) error {
	access, err := cmdCtx.Kit.Tokens.Access(cmdCtx.Ctx)
	if err != nil {
		return fmt.Errorf("read access token: %w", err)
	}
	refresh, err := cmdCtx.Kit.Tokens.Refresh(cmdCtx.Ctx)
	if err != nil {
		return fmt.Errorf("read refresh token: %w", err)
	}

	if access == "" && refresh == "" {
		return writef(os.Stdout, "No stored tokens\n")
	}

	if err := writef(os.Stdout, "Access:  %s\n", describeToken(access)); err != nil {
		return err
	}
	return writef(os.Stdout, "Refresh: %s\n", describeToken(refresh))
}

func describeToken(raw string) string {
	if raw == "" {
		return "(absent)"
	}
	summary := util.Truncate(raw, 24)
	expiry, err := token.ExpiresAt(raw)
	if err != nil {
		return fmt.Sprintf("%s (no expiry claim)", summary)
	}
	if token.IsExpired(raw) {
		return fmt.Sprintf("%s (expired %s)", summary, util.FormatRelativeTime(expiry, time.Now()))
	}
	return fmt.Sprintf("%s (expires %s)", summary, expiry.Format(time.RFC3339))
}

func parseLoginFlags(args []string) (loginOptions, error) {
	fs := flag.NewFlagSet("login", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	var opts loginOptions
	fs.StringVar(&opts.Email, "email", "", "Account email address")
	fs.StringVar(&opts.Password, "password", "", "Account password")

	if err := fs.Parse(args); err != nil {
		return loginOptions{}, err
	}
	if opts.Email == "" || opts.Password == "" {
		return loginOptions{}, errors.New("both -email and -password are required")
	}
	return opts, nil
}

func parseProfileSetFlags(args []string) (profileSetOptions, error) {
	fs := flag.NewFlagSet("profile-set", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	var opts profileSetOptions
	fs.StringVar(&opts.Name, "name", "", "New display name")
	fs.StringVar(&opts.Avatar, "avatar", "", "New avatar URL")
	fs.StringVar(&opts.Email, "email", "", "New email address")

	if err := fs.Parse(args); err != nil {
		return profileSetOptions{}, err
	}
	return opts, nil
}

func parseThemeFlags(args []string) (themeOptions, error) {
	fs := flag.NewFlagSet("theme", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	var opts themeOptions
	fs.StringVar(&opts.Set, "set", "", "Set the color mode (light or dark)")

	if err := fs.Parse(args); err != nil {
		return themeOptions{}, err
	}
	return opts, nil
}
