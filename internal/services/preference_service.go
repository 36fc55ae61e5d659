package services

import (
	"context"
	"strings"

	"github.com/soaringjerry/PainMap/internal/bodymap"
	"github.com/soaringjerry/PainMap/internal/dial"
)

// PreferenceStore keeps small per-owner settings. An owner is a user id or
// an anonymous device id.
type PreferenceStore interface {
	GetPreference(ctx context.Context, owner, key string) (string, bool, error)
	SetPreference(ctx context.Context, owner, key, value string) error
}

const (
	PrefVariant   = "variant"
	PrefDialStyle = "dial_style"
)

// Preferences is what a client needs to restore its last setup.
type Preferences struct {
	Variant   bodymap.Variant `json:"variant"`
	DialStyle dial.Style      `json:"dial_style"`
}

type PreferenceService struct {
	store PreferenceStore
}

func NewPreferenceService(store PreferenceStore) *PreferenceService {
	return &PreferenceService{store: store}
}

func storeUnavailable(err error) error {
	return NewBadGatewayError("preference store unavailable", err)
}

func ownerKey(owner string) (string, error) {
	owner = strings.TrimSpace(owner)
	if owner == "" {
		return "", NewInvalidError("device or user id required")
	}
	return owner, nil
}

// Get returns stored preferences, falling back to defaults for unset keys.
func (s *PreferenceService) Get(ctx context.Context, owner string) (*Preferences, error) {
	owner, err := ownerKey(owner)
	if err != nil {
		return nil, err
	}
	prefs := &Preferences{Variant: bodymap.DefaultVariant, DialStyle: dial.StyleRadial}
	if v, ok, err := s.store.GetPreference(ctx, owner, PrefVariant); err != nil {
		return nil, storeUnavailable(err)
	} else if ok {
		prefs.Variant = bodymap.ParseVariant(v)
	}
	if v, ok, err := s.store.GetPreference(ctx, owner, PrefDialStyle); err != nil {
		return nil, storeUnavailable(err)
	} else if ok {
		prefs.DialStyle = dial.ParseStyle(v)
	}
	return prefs, nil
}

// SetVariant stores the silhouette choice. Unknown names are rejected.
func (s *PreferenceService) SetVariant(ctx context.Context, owner, raw string) (bodymap.Variant, error) {
	owner, err := ownerKey(owner)
	if err != nil {
		return "", err
	}
	v := bodymap.Variant(strings.ToLower(strings.TrimSpace(raw)))
	if !v.Valid() {
		return "", NewInvalidError("unknown variant")
	}
	if err := s.store.SetPreference(ctx, owner, PrefVariant, string(v)); err != nil {
		return "", storeUnavailable(err)
	}
	return v, nil
}

// SetDialStyle stores the dial choice. Unknown names are rejected.
func (s *PreferenceService) SetDialStyle(ctx context.Context, owner, raw string) (dial.Style, error) {
	owner, err := ownerKey(owner)
	if err != nil {
		return "", err
	}
	st := dial.Style(strings.ToLower(strings.TrimSpace(raw)))
	if st != dial.StyleRadial && st != dial.StyleLinear {
		return "", NewInvalidError("unknown dial style")
	}
	if err := s.store.SetPreference(ctx, owner, PrefDialStyle, string(st)); err != nil {
		return "", storeUnavailable(err)
	}
	return st, nil
}
