package normalize

import (
	"strings"
)

// canonicalPlatforms maps comparison keys to the canonical platform
// vocabulary. Keys are produced by platformKey, so punctuation, spacing
// and region prefixes never matter.
var canonicalPlatforms = map[string]string{
	"playstation3":       "PS3",
	"playstation4":       "PS4",
	"playstation5":       "PS5",
	"playstationvita":    "PS Vita",
	"psvita":             "PS Vita",
	"xboxone":            "Xbox One",
	"xboxseriesxs":       "Xbox Series X|S",
	"xboxseriesx":        "Xbox Series X|S",
	"xboxseriess":        "Xbox Series X|S",
	"xbox360":            "Xbox 360",
	"pcwindows":          "PC",
	"windows":            "PC",
	"pcmicrosoftwindows": "PC",
	"pc":                 "PC",
	"mac":                "Mac",
	"macos":              "Mac",
	"linux":              "Linux",
	"nintendoswitch":     "Switch",
	"switch":             "Switch",
	"nintendoswitch2":    "Switch 2",
	"ios":                "iOS",
	"android":            "Android",
}

var regionPrefixes = []string{"pal", "ntsc", "jpy"}

// platformKey builds the comparison key for a raw platform label: trim,
// lower-case, drop PAL/NTSC style prefixes, keep alphanumerics only, and
// expand the psN abbreviation so "PS5" and "PlayStation 5" compare equal.
// The digits survive the fold, which keeps PS4 and PS5 distinct.
func platformKey(raw string) string {
	s := strings.ToLower(strings.TrimSpace(raw))
	for _, prefix := range regionPrefixes {
		for _, sep := range []string{"-", "_", " "} {
			if rest, ok := strings.CutPrefix(s, prefix+sep); ok {
				s = strings.TrimSpace(rest)
			}
		}
	}

	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	key := b.String()

	if rest, ok := strings.CutPrefix(key, "ps"); ok && rest != "" && rest[0] >= '0' && rest[0] <= '9' {
		key = "playstation" + rest
	}
	return key
}

// Platforms maps provider-specific platform labels onto the canonical
// vocabulary. Unknown labels pass through unchanged so the pipeline never
// blocks on a platform name it has not seen. Order is preserved and
// duplicates are removed.
func Platforms(raw []string) []string {
	return normalizeMany(raw, func(key, original string) string {
		if canonical, ok := canonicalPlatforms[key]; ok {
			return canonical
		}
		return strings.TrimSpace(original)
	})
}

// canonicalGenres maps genre comparison keys to display names. Providers
// disagree on spelling ("Role-Playing (RPG)" vs "RPG" vs "Role playing
// games"); everything else passes through.
var canonicalGenres = map[string]string{
	"action":               "Action",
	"adventure":            "Adventure",
	"actionadventure":      "Action-Adventure",
	"rpg":                  "RPG",
	"roleplaying":          "RPG",
	"roleplayingrpg":       "RPG",
	"roleplayinggames":     "RPG",
	"shooter":              "Shooter",
	"firstpersonshooter":   "Shooter",
	"fps":                  "Shooter",
	"strategy":             "Strategy",
	"simulation":           "Simulation",
	"simulator":            "Simulation",
	"sports":               "Sports",
	"sport":                "Sports",
	"racing":               "Racing",
	"driving":              "Racing",
	"drivingracing":        "Racing",
	"fighting":             "Fighting",
	"puzzle":               "Puzzle",
	"platformer":           "Platformer",
	"platform":             "Platformer",
	"horror":               "Horror",
	"survivalhorror":       "Horror",
	"indie":                "Indie",
	"casual":               "Casual",
	"mmo":                  "MMO",
	"massivelymultiplayer": "MMO",
	"musicrhythm":          "Music",
	"music":                "Music",
}

// Genres maps provider genre labels onto the canonical vocabulary, with
// the same pass-through, ordering and dedup rules as Platforms.
func Genres(raw []string) []string {
	return normalizeMany(raw, func(key, original string) string {
		if canonical, ok := canonicalGenres[key]; ok {
			return canonical
		}
		return strings.TrimSpace(original)
	})
}

func normalizeMany(raw []string, lookup func(key, original string) string) []string {
	if len(raw) == 0 {
		return nil
	}

	out := make([]string, 0, len(raw))
	seen := make(map[string]struct{}, len(raw))
	for _, r := range raw {
		if strings.TrimSpace(r) == "" {
			continue
		}
		mapped := lookup(platformKey(r), r)
		if mapped == "" {
			continue
		}
		dedupKey := strings.ToLower(mapped)
		if _, dup := seen[dedupKey]; dup {
			continue
		}
		seen[dedupKey] = struct{}{}
		out = append(out, mapped)
	}
	return out
}
