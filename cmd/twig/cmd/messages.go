package cmd

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/aweris/twig"
)

// usageError is a malformed invocation. It never reaches the engine.
type usageError struct{ msg string }

func (e *usageError) Error() string { return e.msg }

var (
	errNoCommand = &usageError{"Please enter a command."}
	errOperands  = &usageError{"Incorrect operands."}
	errNoMessage = &usageError{"Please enter a commit message."}
)

// messageError replaces the user-facing text of err for one command.
type messageError struct {
	msg string
	err error
}

func (e *messageError) Error() string { return e.msg }
func (e *messageError) Unwrap() error { return e.err }

func withMessage(err error, target error, msg string) error {
	if errors.Is(err, target) {
		return &messageError{msg: msg, err: err}
	}
	return err
}

// messages maps engine errors to user-facing lines. Specific errors come
// before the kinds they belong to.
var messages = []struct {
	err error
	msg string
}{
	{twig.ErrNotInitialized, "Not in an initialized Twig directory."},
	{twig.ErrAlreadyInitialized, "A Twig version-control system already exists in the current directory."},
	{twig.ErrFileNotFound, "File does not exist."},
	{twig.ErrFileNotInCommit, "File does not exist in that commit."},
	{twig.ErrNoSuchCommit, "No commit with that id exists."},
	{twig.ErrAmbiguousCommit, "Commit id is ambiguous; use more characters."},
	{twig.ErrNoCommitMessage, "Found no commit with that message."},
	{twig.ErrEmptyMessage, "Please enter a commit message."},
	{twig.ErrNothingToCommit, "No changes added to the commit."},
	{twig.ErrNothingToRemove, "No reason to remove the file."},
	{twig.ErrCheckoutCurrent, "No need to checkout the current branch."},
	{twig.ErrNoSuchBranch, "A branch with that name does not exist."},
	{twig.ErrBranchExists, "A branch with that name already exists."},
	{twig.ErrRemoveCurrent, "Cannot remove the current branch."},
	{twig.ErrUncommitted, "You have uncommitted changes."},
	{twig.ErrSelfMerge, "Cannot merge a branch with itself."},
	{twig.ErrNothingToMerge, "Cannot merge a branch with itself."},
	{twig.ErrAncestorMerge, "Given branch is an ancestor of the current branch."},
	{twig.ErrRemoteExists, "A remote with that name already exists."},
	{twig.ErrNoSuchRemote, "A remote with that name does not exist."},
	{twig.ErrRemoteNotFound, "Remote directory not found."},
	{twig.ErrRemoteNoBranch, "That remote does not have that branch."},
	{twig.ErrPushNeedsPull, "Please pull down remote changes before pushing."},
	{twig.ErrInvalidStrategy, "Unknown merge split strategy."},
	{twig.ErrUntrackedFile, "There is an untracked file in the way; delete it, or add and commit it first."},
}

// message returns the line printed for err and whether err is a user-facing
// failure.
func message(err error) (string, bool) {
	var me *messageError
	if errors.As(err, &me) {
		return me.msg, true
	}
	var ue *usageError
	if errors.As(err, &ue) {
		return ue.msg, true
	}
	for _, m := range messages {
		if errors.Is(err, m.err) {
			return m.msg, true
		}
	}

	// cobra reports these as plain errors
	s := err.Error()
	switch {
	case strings.HasPrefix(s, "unknown command"):
		return "No command with that name exists.", true
	case strings.HasPrefix(s, "unknown flag"), strings.HasPrefix(s, "unknown shorthand flag"),
		strings.HasPrefix(s, "flag needs an argument"), strings.HasPrefix(s, "invalid argument"):
		return "Incorrect operands.", true
	}
	return s, false
}

// report prints the outcome of a command and returns the exit status.
func report(out io.Writer, err error) int {
	if err == nil {
		return 0
	}
	msg, user := message(err)
	fmt.Fprintln(out, msg)
	if user {
		return 0
	}
	return 1
}
