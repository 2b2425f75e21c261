package api

import (
	"time"

	"github.com/phrazzld/agora-api/internal/api/shared"
	"github.com/phrazzld/agora-api/internal/i18n"
)

// versionProfile captures everything that differs between API versions.
type versionProfile struct {
	version shared.APIVersion
	// releaseDate is reported by apiInfo.
	releaseDate time.Time
	deprecated  bool
	// localizeValues renders dates and enumerated values in the request locale.
	localizeValues bool
	// listEmails keeps user emails in users and searchUsers list items.
	listEmails bool
	// commentPostObject lets Comment.post expand into the post; otherwise it
	// is always the post's identifier.
	commentPostObject bool
	// localizedErrors translates error messages into the request locale;
	// otherwise they are English.
	localizedErrors bool
}

var versionProfiles = map[shared.APIVersion]versionProfile{
	shared.V1: {
		version:           shared.V1,
		releaseDate:       time.Date(2024, time.January, 15, 0, 0, 0, 0, time.UTC),
		localizeValues:    true,
		listEmails:        true,
		commentPostObject: true,
		localizedErrors:   true,
	},
	shared.V2: {
		version:     shared.V2,
		releaseDate: time.Date(2024, time.June, 3, 0, 0, 0, 0, time.UTC),
	},
}

// dispatch selects the version profile of a request. Unknown versions were
// already folded into V1 by the request context resolver.
func dispatch(rc shared.RequestContext) versionProfile {
	if p, ok := versionProfiles[rc.APIVersion]; ok {
		return p
	}
	return versionProfiles[shared.V1]
}

// messageLocale is the locale of error messages for rc.
func (p versionProfile) messageLocale(rc shared.RequestContext) i18n.Locale {
	if p.localizedErrors {
		return rc.Locale
	}
	return i18n.English
}
