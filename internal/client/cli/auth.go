package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/syllabify/internal/client/api"
	"github.com/dmitrijs2005/syllabify/internal/client/models"
	"github.com/dmitrijs2005/syllabify/internal/client/router"
	"github.com/dmitrijs2005/syllabify/internal/client/views"
)

// getSimpleText and getPassword are indirections used to facilitate testing.
// They point to interactive input helpers and can be swapped in tests.
var getSimpleText = GetSimpleText
var getPassword = GetPassword

const securityQuestionCount = 3

// Login prompts for credentials and signs in. Accounts that have not
// completed security setup are taken to the setup screen.
//
// Rejected credentials are reported to the user and returned.
func (a *App) Login(ctx context.Context) error {
	username, err := getSimpleText(a.reader, "Username", a.out)
	if err != nil {
		return err
	}

	password, err := getPassword(a.out)
	if err != nil {
		return err
	}

	done, err := a.auth.Login(ctx, username, string(password))
	clear(password)
	if err != nil {
		var aerr *api.AuthError
		if errors.As(err, &aerr) {
			views.Error(a.out, aerr.Error())
		} else {
			views.Error(a.out, "Login failed")
			a.log.Error(ctx, "login failed", "error", err)
		}
		return err
	}

	views.Success(a.out, "Signed in as "+username)
	if !done {
		a.navigate(ctx, router.SecuritySetupPath)
		return nil
	}
	a.navigate(ctx, router.RootPath)
	return nil
}

// Logout forgets the session locally and shows the login screen.
func (a *App) Logout(ctx context.Context) error {
	err := a.auth.Logout(ctx)
	if err != nil {
		views.Error(a.out, "Signed out, but the saved session could not be removed")
	} else {
		views.Success(a.out, "Signed out")
	}
	a.navigate(ctx, router.LoginPath)
	return err
}

// Setup collects security questions and submits them for the current
// session. Whether a session exists is left to the auth service, which
// also falls back to the saved token.
func (a *App) Setup(ctx context.Context) error {
	questions := make([]models.SecurityQuestion, 0, securityQuestionCount)
	for i := 1; i <= securityQuestionCount; i++ {
		q, err := getSimpleText(a.reader, fmt.Sprintf("Question %d", i), a.out)
		if err != nil {
			return err
		}
		ans, err := getSimpleText(a.reader, "Answer", a.out)
		if err != nil {
			return err
		}
		questions = append(questions, models.SecurityQuestion{Question: q, Answer: ans})
	}

	submitted, err := a.auth.CompleteSecuritySetup(ctx, questions)
	if err != nil {
		views.Error(a.out, err.Error())
		return err
	}
	if !submitted {
		views.Error(a.out, "Not signed in; nothing was submitted. Type `login` first.")
		return nil
	}

	views.Success(a.out, "Security questions saved")
	a.navigate(ctx, router.RootPath)
	return nil
}

// WhoAmI prints the signed-in user and when the session was saved.
func (a *App) WhoAmI(ctx context.Context) error {
	st := a.auth.State()
	if st.User == nil {
		_, _ = fmt.Fprintln(a.out, "Not signed in")
		return nil
	}

	_, _ = fmt.Fprintf(a.out, "Username:       %s\n", st.User.Username)
	_, _ = fmt.Fprintf(a.out, "Security setup: %s\n", doneLabel(st.SecuritySetupDone))

	savedAt, ok, err := a.session.SavedAt(ctx)
	if err != nil {
		a.log.Warn(ctx, "reading session timestamp failed", "error", err)
		return nil
	}
	if ok {
		_, _ = fmt.Fprintf(a.out, "Signed in:      %s\n", savedAt.Local().Format(time.RFC1123))
	}
	return nil
}

func doneLabel(done bool) string {
	if done {
		return "complete"
	}
	return "pending"
}
