package schema

import (
	"sort"
	"strings"
)

// Team is one of the 30 fixed franchises.
type Team struct {
	ID           int64  `json:"id"`
	Key          string `json:"key"`
	Abbreviation string `json:"abbreviation"`
	Name         string `json:"name"`
}

// Teams is the immutable franchise reference list keyed by normalized team key.
var Teams = map[string]Team{
	"atlanta_hawks":          {1610612737, "atlanta_hawks", "ATL", "Atlanta Hawks"},
	"boston_celtics":         {1610612738, "boston_celtics", "BOS", "Boston Celtics"},
	"brooklyn_nets":          {1610612751, "brooklyn_nets", "BKN", "Brooklyn Nets"},
	"charlotte_hornets":      {1610612766, "charlotte_hornets", "CHA", "Charlotte Hornets"},
	"chicago_bulls":          {1610612741, "chicago_bulls", "CHI", "Chicago Bulls"},
	"cleveland_cavaliers":    {1610612739, "cleveland_cavaliers", "CLE", "Cleveland Cavaliers"},
	"dallas_mavericks":       {1610612742, "dallas_mavericks", "DAL", "Dallas Mavericks"},
	"denver_nuggets":         {1610612743, "denver_nuggets", "DEN", "Denver Nuggets"},
	"detroit_pistons":        {1610612765, "detroit_pistons", "DET", "Detroit Pistons"},
	"golden_state_warriors":  {1610612744, "golden_state_warriors", "GSW", "Golden State Warriors"},
	"houston_rockets":        {1610612745, "houston_rockets", "HOU", "Houston Rockets"},
	"indiana_pacers":         {1610612754, "indiana_pacers", "IND", "Indiana Pacers"},
	"los_angeles_clippers":   {1610612746, "los_angeles_clippers", "LAC", "LA Clippers"},
	"los_angeles_lakers":     {1610612747, "los_angeles_lakers", "LAL", "Los Angeles Lakers"},
	"memphis_grizzlies":      {1610612763, "memphis_grizzlies", "MEM", "Memphis Grizzlies"},
	"miami_heat":             {1610612748, "miami_heat", "MIA", "Miami Heat"},
	"milwaukee_bucks":        {1610612749, "milwaukee_bucks", "MIL", "Milwaukee Bucks"},
	"minnesota_timberwolves": {1610612750, "minnesota_timberwolves", "MIN", "Minnesota Timberwolves"},
	"new_orleans_pelicans":   {1610612740, "new_orleans_pelicans", "NOP", "New Orleans Pelicans"},
	"new_york_knicks":        {1610612752, "new_york_knicks", "NYK", "New York Knicks"},
	"oklahoma_city_thunder":  {1610612760, "oklahoma_city_thunder", "OKC", "Oklahoma City Thunder"},
	"orlando_magic":          {1610612753, "orlando_magic", "ORL", "Orlando Magic"},
	"philadelphia_76ers":     {1610612755, "philadelphia_76ers", "PHI", "Philadelphia 76ers"},
	"phoenix_suns":           {1610612756, "phoenix_suns", "PHX", "Phoenix Suns"},
	"portland_trail_blazers": {1610612757, "portland_trail_blazers", "POR", "Portland Trail Blazers"},
	"sacramento_kings":       {1610612758, "sacramento_kings", "SAC", "Sacramento Kings"},
	"san_antonio_spurs":      {1610612759, "san_antonio_spurs", "SAS", "San Antonio Spurs"},
	"toronto_raptors":        {1610612761, "toronto_raptors", "TOR", "Toronto Raptors"},
	"utah_jazz":              {1610612762, "utah_jazz", "UTA", "Utah Jazz"},
	"washington_wizards":     {1610612764, "washington_wizards", "WAS", "Washington Wizards"},
}

// teamAliases maps alternate keys seen in historical data to canonical keys.
var teamAliases = map[string]string{
	"la_clippers": "los_angeles_clippers",
	"la_lakers":   "los_angeles_lakers",
}

// LookupTeam resolves a team key, alias, abbreviation or display name.
func LookupTeam(s string) (Team, bool) {
	key := strings.ToLower(strings.TrimSpace(s))
	key = strings.ReplaceAll(key, " ", "_")
	if alias, ok := teamAliases[key]; ok {
		key = alias
	}
	if t, ok := Teams[key]; ok {
		return t, true
	}
	for _, t := range Teams {
		if strings.EqualFold(t.Abbreviation, s) || strings.EqualFold(t.Name, strings.TrimSpace(s)) {
			return t, true
		}
	}
	return Team{}, false
}

// TeamKeys returns all canonical team keys in sorted order.
func TeamKeys() []string {
	keys := make([]string, 0, len(Teams))
	for k := range Teams {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
