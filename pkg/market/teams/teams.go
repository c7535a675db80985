// Package teams maps team names from any upstream format (user input,
// odds feeds, stats feeds) onto one canonical uppercase name. The
// scoring engine only ever sees canonical names; this package is the
// collaborator the CLI runs inputs through first.
package teams

import (
	"sort"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Normalizer resolves team-name variants to canonical names.
type Normalizer struct {
	canonical map[string]struct{}
	aliases   map[string]string
}

// mascotSuffixes are stripped from inputs like "Georgia Bulldogs"
// before lookup.
var mascotSuffixes = []string{
	"BULLDOGS", "CRIMSON TIDE", "BUCKEYES", "WOLVERINES", "LONGHORNS",
	"SOONERS", "TIGERS", "GATORS", "SEMINOLES", "DUCKS", "HUSKIES",
	"NITTANY LIONS", "FIGHTING IRISH", "BADGERS", "SPARTANS", "TROJANS",
	"BRUINS", "WILDCATS", "VOLUNTEERS", "AGGIES", "REBELS", "GAMECOCKS",
	"RAZORBACKS", "CORNHUSKERS", "HAWKEYES", "YELLOW JACKETS", "HOKIES",
	"CAVALIERS", "DEMON DEACONS", "BLUE DEVILS", "TAR HEELS", "PANTHERS",
	"CYCLONES", "JAYHAWKS", "HORNED FROGS", "RED RAIDERS", "MOUNTAINEERS",
	"COUGARS", "UTES", "SUN DEVILS", "BEAVERS", "CARDINAL", "GOLDEN BEARS",
}

// NewNormalizer builds a normalizer over the FBS team table.
func NewNormalizer() *Normalizer {
	n := &Normalizer{
		canonical: make(map[string]struct{}, len(teamTable)),
		aliases:   make(map[string]string),
	}
	for name, aliases := range teamTable {
		n.canonical[name] = struct{}{}
		for _, a := range aliases {
			n.aliases[clean(a)] = name
		}
	}
	return n
}

// Normalize resolves any team-name variant to its canonical name.
// The boolean reports whether the name could be resolved.
func (n *Normalizer) Normalize(name string) (string, bool) {
	c := clean(name)
	if c == "" {
		return "", false
	}

	if canon, ok := n.lookup(c); ok {
		return canon, true
	}

	// Retry without a trailing mascot.
	if stripped := stripMascot(c); stripped != c {
		if canon, ok := n.lookup(stripped); ok {
			return canon, true
		}
	}

	// Last resort: unique prefix match against canonical names.
	return n.prefixMatch(c)
}

// Validate reports whether the name resolves to a known team.
func (n *Normalizer) Validate(name string) bool {
	_, ok := n.Normalize(name)
	return ok
}

// AllTeams returns every canonical team name, sorted lexically.
func (n *Normalizer) AllTeams() []string {
	out := make([]string, 0, len(n.canonical))
	for name := range n.canonical {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

func (n *Normalizer) lookup(c string) (string, bool) {
	if _, ok := n.canonical[c]; ok {
		return c, true
	}
	if canon, ok := n.aliases[c]; ok {
		return canon, true
	}
	return "", false
}

func (n *Normalizer) prefixMatch(c string) (string, bool) {
	match := ""
	for name := range n.canonical {
		if strings.HasPrefix(name, c) {
			if match != "" {
				return "", false // Ambiguous.
			}
			match = name
		}
	}
	return match, match != ""
}

// clean uppercases, folds diacritics, and collapses whitespace.
func clean(name string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	name, _, _ = transform.String(t, name)
	name = strings.ToUpper(name)
	name = strings.Join(strings.Fields(name), " ")
	return strings.Trim(name, " .")
}

func stripMascot(c string) string {
	for _, suffix := range mascotSuffixes {
		if strings.HasSuffix(c, " "+suffix) {
			return strings.TrimSpace(strings.TrimSuffix(c, " "+suffix))
		}
	}
	return c
}

// teamTable maps canonical names to known aliases and feed formats.
var teamTable = map[string][]string{
	"ALABAMA":        {"bama", "crimson tide", "university of alabama"},
	"ARIZONA STATE":  {"asu", "arizona st"},
	"ARKANSAS":       {"razorbacks", "ark"},
	"AUBURN":         {"aub", "war eagle"},
	"BOSTON COLLEGE": {"bc"},
	"CLEMSON":        {"clem"},
	"COLORADO":       {"buffs", "cu"},
	"DUKE":           {},
	"FLORIDA":        {"uf", "gators"},
	"FLORIDA STATE":  {"fsu", "florida st", "noles"},
	"GEORGIA":        {"uga", "georgia bulldogs"},
	"GEORGIA TECH":   {"gt", "georgia institute of technology"},
	"ILLINOIS":       {"illini"},
	"IOWA":           {"hawkeyes"},
	"IOWA STATE":     {"isu", "iowa st"},
	"KANSAS":         {"ku", "jayhawks"},
	"KANSAS STATE":   {"ksu", "kansas st", "k-state"},
	"KENTUCKY":       {"uk"},
	"LSU":            {"louisiana state", "louisiana state university"},
	"MARYLAND":       {"umd", "terps"},
	"MIAMI":          {"miami fl", "the u", "miami hurricanes"},
	"MICHIGAN":       {"um", "michigan wolverines"},
	"MICHIGAN STATE": {"msu", "michigan st", "sparty"},
	"MINNESOTA":      {"gophers"},
	"MISSISSIPPI":    {"ole miss", "rebels", "mississippi rebels"},
	"MISSOURI":       {"mizzou"},
	"NEBRASKA":       {"huskers"},
	"NORTH CAROLINA": {"unc", "tar heels"},
	"NOTRE DAME":     {"nd", "irish"},
	"OHIO STATE":     {"osu", "ohio st", "the ohio state university"},
	"OKLAHOMA":       {"ou", "sooners"},
	"OKLAHOMA STATE": {"okst", "oklahoma st", "pokes"},
	"OREGON":         {"uo", "ducks"},
	"OREGON STATE":   {"beavs", "oregon st"},
	"PENN STATE":     {"psu", "penn st"},
	"PITTSBURGH":     {"pitt"},
	"PURDUE":         {"boilers", "boilermakers"},
	"SOUTH CAROLINA": {"scar", "gamecocks"},
	"STANFORD":       {"stanford cardinal"},
	"TCU":            {"texas christian"},
	"TENNESSEE":      {"vols", "ut knoxville"},
	"TEXAS":          {"ut", "texas longhorns"},
	"TEXAS A&M":      {"tamu", "a&m", "texas am"},
	"TEXAS TECH":     {"ttu"},
	"UCLA":           {},
	"USC":            {"southern cal", "southern california"},
	"UTAH":           {"utes"},
	"VANDERBILT":     {"vandy"},
	"VIRGINIA":       {"uva", "wahoos"},
	"VIRGINIA TECH":  {"vt", "hokies"},
	"WAKE FOREST":    {"wake"},
	"WASHINGTON":     {"uw", "udub"},
	"WEST VIRGINIA":  {"wvu"},
	"WISCONSIN":      {"wisc", "badgers"},
}
