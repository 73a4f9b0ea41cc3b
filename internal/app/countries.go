package app

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"time"
)

const DefaultCountriesURL = "https://restcountries.com/v3.1/all?fields=name,idd,cca2"

type CountryDialCode struct {
	Name        string
	CCA2        string
	CallingCode string
}

type restCountry struct {
	Name struct {
		Common   string `json:"common"`
		Official string `json:"official"`
	} `json:"name"`
	CCA2 string `json:"cca2"`
	IDD  struct {
		Root     string   `json:"root"`
		Suffixes []string `json:"suffixes"`
	} `json:"idd"`
}

// FetchCountryDialCodes performs the one best-effort dial-code lookup: no
// retry, no caching, no pagination. The calling code is the IDD root plus
// its first suffix (root alone when there are none); entries with no
// resolvable code are dropped and the rest are sorted by name. Callers map
// an error to an empty selector.
func FetchCountryDialCodes(ctx context.Context, client *http.Client, url string) ([]CountryDialCode, error) {
	if client == nil {
		client = &http.Client{Timeout: 15 * time.Second}
	}
	if url == "" {
		url = DefaultCountriesURL
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("countries lookup: unexpected status %s", resp.Status)
	}

	var raw []restCountry
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, fmt.Errorf("countries lookup: %w", err)
	}

	out := make([]CountryDialCode, 0, len(raw))
	for _, c := range raw {
		code := c.IDD.Root
		if code != "" && len(c.IDD.Suffixes) > 0 {
			code += c.IDD.Suffixes[0]
		}
		if code == "" || code == "+" {
			continue
		}
		name := c.Name.Common
		if name == "" {
			name = c.Name.Official
		}
		if name == "" {
			name = "Unknown"
		}
		cca2 := c.CCA2
		if cca2 == "" {
			cca2 = "XX"
		}
		out = append(out, CountryDialCode{Name: name, CCA2: cca2, CallingCode: code})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}
