package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"
)

const usage = `Usage: streamplan [flags] <commande>

Commandes:
  health | version | stats | teams | tournaments | packages
  plan   (avec -teams, -tournaments, -games, -live, -highlights, -monthly, -all)`

func main() {
	baseURL := flag.String("server", envOr("STREAMPLAN_SERVER_URL", "http://127.0.0.1:8080"), "URL du serveur (ex: http://127.0.0.1:8080)")
	timeout := flag.Duration("timeout", 30*time.Second, "Timeout HTTP")
	teams := flag.String("teams", "", "Équipes, séparées par des virgules")
	tournaments := flag.String("tournaments", "", "Compétitions, séparées par des virgules")
	games := flag.String("games", "", "IDs de matchs, séparés par des virgules")
	live := flag.Bool("live", true, "Couvrir le direct")
	highlights := flag.Bool("highlights", false, "Couvrir les résumés")
	monthly := flag.Bool("monthly", false, "Facturation mensuelle")
	all := flag.Bool("all", false, "Tous les matchs")
	flag.Parse()

	args := flag.Args()
	if len(args) == 0 {
		fmt.Fprintln(os.Stderr, usage)
		os.Exit(2)
	}

	client := &http.Client{Timeout: *timeout}

	switch args[0] {
	case "health", "version", "stats", "teams", "tournaments", "packages":
		run(client, *baseURL+"/api/v1/"+args[0])
	case "plan":
		q := url.Values{}
		q.Set("teams", jsonList(*teams, true))
		q.Set("tournaments", jsonList(*tournaments, true))
		q.Set("games", jsonList(*games, false))
		q.Set("live", boolParam(*live))
		q.Set("highlights", boolParam(*highlights))
		q.Set("only_monthly_billing", boolParam(*monthly))
		q.Set("all_games", boolParam(*all))
		run(client, *baseURL+"/api/v1/plan?"+q.Encode())
	default:
		fmt.Fprintln(os.Stderr, "Commande inconnue:", args[0])
		os.Exit(2)
	}
}

// jsonList convertit "a,b" en tableau JSON; quoted: éléments chaînes.
func jsonList(csv string, quoted bool) string {
	var parts []string
	for _, p := range strings.Split(csv, ",") {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	if quoted {
		b, _ := json.Marshal(append([]string{}, parts...))
		return string(b)
	}
	return "[" + strings.Join(parts, ",") + "]"
}

func boolParam(b bool) string {
	if b {
		return "1"
	}
	return "0"
}

func run(client *http.Client, url string) {
	resp, err := client.Get(url)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Erreur:", err)
		os.Exit(1)
	}
	defer resp.Body.Close()

	b, _ := io.ReadAll(resp.Body)
	var pretty any
	if err := json.Unmarshal(b, &pretty); err == nil {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		_ = enc.Encode(pretty)
		if resp.StatusCode >= 400 {
			os.Exit(1)
		}
		return
	}

	os.Stdout.Write(b)
	os.Stdout.Write([]byte("\n"))
	if resp.StatusCode >= 400 {
		os.Exit(1)
	}
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
