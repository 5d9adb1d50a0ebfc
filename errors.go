package twig

import "errors"

// Error kinds. Every error returned by a Repository matches one of these
// with errors.Is.
var (
	ErrNotFound      = errors.New("twig: not found")
	ErrPrecondition  = errors.New("twig: precondition failed")
	ErrUntrackedFile = errors.New("twig: untracked file would be overwritten")
	ErrIO            = errors.New("twig: storage failure")
)

// Error is a specific failure of one kind.
type Error struct {
	Kind error
	Msg  string
}

func (e *Error) Error() string { return "twig: " + e.Msg }
func (e *Error) Unwrap() error { return e.Kind }

var (
	ErrNotInitialized     = &Error{ErrNotFound, "not an initialized repository"}
	ErrAlreadyInitialized = &Error{ErrPrecondition, "repository already exists"}

	ErrFileNotFound     = &Error{ErrNotFound, "file does not exist"}
	ErrFileNotInCommit  = &Error{ErrNotFound, "file does not exist in that commit"}
	ErrNoSuchCommit     = &Error{ErrNotFound, "no commit with that id"}
	ErrAmbiguousCommit  = &Error{ErrNotFound, "commit id is ambiguous"}
	ErrNoCommitMessage  = &Error{ErrNotFound, "no commit with that message"}
	ErrEmptyMessage     = &Error{ErrPrecondition, "empty commit message"}
	ErrNothingToCommit  = &Error{ErrPrecondition, "no changes added to the commit"}
	ErrNothingToRemove  = &Error{ErrPrecondition, "file is neither staged nor tracked"}
	ErrCheckoutCurrent  = &Error{ErrPrecondition, "branch is already checked out"}
	ErrNoSuchBranch     = &Error{ErrNotFound, "no such branch"}
	ErrBranchExists     = &Error{ErrPrecondition, "branch already exists"}
	ErrRemoveCurrent    = &Error{ErrPrecondition, "cannot remove the current branch"}
	ErrUncommitted      = &Error{ErrPrecondition, "uncommitted changes"}
	ErrSelfMerge        = &Error{ErrPrecondition, "cannot merge a branch with itself"}
	ErrNothingToMerge   = &Error{ErrPrecondition, "given branch has nothing to merge"}
	ErrAncestorMerge    = &Error{ErrPrecondition, "given branch is an ancestor of the current branch"}
	ErrRemoteExists     = &Error{ErrPrecondition, "remote already exists"}
	ErrNoSuchRemote     = &Error{ErrNotFound, "no such remote"}
	ErrRemoteNotFound   = &Error{ErrNotFound, "remote directory not found"}
	ErrRemoteNoBranch   = &Error{ErrNotFound, "remote does not have that branch"}
	ErrPushNeedsPull    = &Error{ErrPrecondition, "remote has changes the local branch lacks"}
	ErrInvalidStrategy  = &Error{ErrPrecondition, "unknown split strategy"}
)
