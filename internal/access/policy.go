// Package access decides who may open the report and whose profiles a
// viewer may follow.
package access

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/kursadbilgin/failedemails-report/internal/domain"
	"github.com/kursadbilgin/failedemails-report/internal/repository"
)

// CapabilityView is the capability required to open the report.
const CapabilityView = "report/failedemails:view"

var _ ProfileVisibility = (*Policy)(nil)

type Policy struct {
	users                 repository.UserRepository
	siteAdmins            map[int64]struct{}
	reportViewers         map[int64]struct{}
	forceLoginForProfiles bool
}

type Options struct {
	SiteAdmins            []int64
	ReportViewers         []int64
	ForceLoginForProfiles bool
}

func NewPolicy(users repository.UserRepository, opts Options) (*Policy, error) {
	if users == nil {
		return nil, fmt.Errorf("user repository is required")
	}
	return &Policy{
		users:                 users,
		siteAdmins:            idSet(opts.SiteAdmins),
		reportViewers:         idSet(opts.ReportViewers),
		forceLoginForProfiles: opts.ForceLoginForProfiles,
	}, nil
}

// Authenticate resolves a username from the trusted auth header into a
// viewer. Unknown, deleted and suspended accounts are rejected.
func (p *Policy) Authenticate(ctx context.Context, username string) (domain.Viewer, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return domain.Viewer{}, fmt.Errorf("%w: missing user", domain.ErrUnauthorized)
	}

	user, err := p.users.GetByUsername(ctx, username)
	if errors.Is(err, domain.ErrNotFound) {
		return domain.Viewer{}, fmt.Errorf("%w: unknown user", domain.ErrUnauthorized)
	}
	if err != nil {
		return domain.Viewer{}, err
	}
	if user.Deleted || user.Suspended {
		return domain.Viewer{}, fmt.Errorf("%w: account is not active", domain.ErrUnauthorized)
	}

	return p.ViewerFor(*user), nil
}

// ViewerFor attaches capabilities to an already authenticated user.
func (p *Policy) ViewerFor(user domain.User) domain.Viewer {
	_, admin := p.siteAdmins[user.ID]
	_, viewer := p.reportViewers[user.ID]
	return domain.Viewer{
		User:          user,
		SiteAdmin:     admin,
		CanViewReport: admin || viewer,
	}
}

// RequireReport fails with ErrForbidden unless the viewer holds the
// report capability.
func RequireReport(viewer domain.Viewer) error {
	if !viewer.CanViewReport {
		return fmt.Errorf("%w: %s required", domain.ErrForbidden, CapabilityView)
	}
	return nil
}

func RequireSiteAdmin(viewer domain.Viewer) error {
	if !viewer.SiteAdmin {
		return fmt.Errorf("%w: site administrator required", domain.ErrForbidden)
	}
	return nil
}

// ProfileVisibility reports whether a viewer may open a user's profile.
type ProfileVisibility interface {
	CanViewProfile(viewer domain.Viewer, targetID int64, targetDeleted bool) bool
}

func (p *Policy) CanViewProfile(viewer domain.Viewer, targetID int64, targetDeleted bool) bool {
	switch {
	case targetDeleted:
		return false
	case viewer.SiteAdmin:
		return true
	case viewer.User.ID != 0 && viewer.User.ID == targetID:
		return true
	default:
		return !p.forceLoginForProfiles
	}
}

// SystemViewer is the site-level identity used by offline exports.
func SystemViewer() domain.Viewer {
	return domain.Viewer{
		User:          domain.User{Username: "system"},
		SiteAdmin:     true,
		CanViewReport: true,
	}
}

func idSet(ids []int64) map[int64]struct{} {
	set := make(map[int64]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set
}
