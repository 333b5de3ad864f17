package web

import (
	"net/url"
	"sort"

	vm "github.com/ericfisherdev/liveconfig/internal/adapter/driving/web/viewmodel"
	"github.com/ericfisherdev/liveconfig/internal/domain/model"
)

const displayTimeLayout = "2006-01-02 15:04 MST"

// keyHintChars is how many characters of the key are shown at each end.
const keyHintChars = 4

// toProfileCardViewModel converts a single domain Profile to a ProfileCardViewModel.
func toProfileCardViewModel(p model.Profile) vm.ProfileCardViewModel {
	card := vm.ProfileCardViewModel{
		ID:          p.ID,
		Name:        p.Name,
		PreviewPath: "/profiles/" + url.PathEscape(p.ID),
	}
	if !p.LastModified.IsZero() {
		card.LastModified = p.LastModified.UTC().Format(displayTimeLayout)
	}
	if p.ModifiedBy != nil {
		card.ModifiedBy = *p.ModifiedBy
	}
	return card
}

// toProfileDetailViewModel converts a profile into the preview page model.
// The instructions field is rendered as markdown and left out of Fields.
func toProfileDetailViewModel(p model.Profile) vm.ProfileDetailViewModel {
	detail := vm.ProfileDetailViewModel{
		ProfileCardViewModel: toProfileCardViewModel(p),
		SchemaVersion:        p.SchemaVersion,
		InstructionsHTML:     RenderMarkdown(p.Instructions()),
		Fields:               []vm.FieldViewModel{},
	}

	keys := make([]string, 0, len(p.Extra))
	for k := range p.Extra {
		if k == model.InstructionsField && detail.InstructionsHTML != "" {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		detail.Fields = append(detail.Fields, vm.FieldViewModel{Key: k, Value: string(p.Extra[k])})
	}
	return detail
}

// toDashboardViewModel builds the landing page model.
func toDashboardViewModel(cfg model.SharedConfig, setup *model.SetupEntry) vm.DashboardViewModel {
	dash := vm.DashboardViewModel{
		SetupDone: setup != nil,
		Profiles:  make([]vm.ProfileCardViewModel, 0, len(cfg.Profiles)),
	}
	if cfg.GeminiAPIKey != nil && *cfg.GeminiAPIKey != "" {
		dash.KeyConfigured = true
		dash.KeyHint = maskKey(*cfg.GeminiAPIKey)
	}
	for _, p := range cfg.Profiles {
		dash.Profiles = append(dash.Profiles, toProfileCardViewModel(p))
	}
	return dash
}

// maskKey hides all but the first and last few characters of an API key.
func maskKey(key string) string {
	if len(key) <= 2*keyHintChars {
		return "••••"
	}
	return key[:keyHintChars] + "…" + key[len(key)-keyHintChars:]
}
