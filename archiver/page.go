package archiver

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/net/html"
)

// getRequest returns an *http.Response for a given url.
func getRequest(cl *http.Client, url string) (*http.Response, error) {
	if cl == nil {
		cl = &http.Client{Timeout: 2 * time.Minute}
	}
	resp, err := cl.Get(url)
	if err != nil {
		return resp, err
	} else if resp.StatusCode != 200 {
		resp.Body.Close()
		return nil, fmt.Errorf("Got status code %d %v when fetching %s", resp.StatusCode, http.StatusText(resp.StatusCode), url)
	}
	return resp, nil
}

// readPage drains and closes the response, returning the body and headers.
func readPage(resp *http.Response) ([]byte, http.Header, error) {
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, nil, fmt.Errorf("Unable to read response body: %v", err)
	}
	return body, resp.Header, nil
}

// DiscoverURLs extracts anchor hrefs from the HTML read from r, resolves
// them against baseURL, strips fragments, and drops anything that isn't
// http or https (ex: mailto or ftp). The result is ready to feed to
// AddURL.
func DiscoverURLs(r io.Reader, baseURL string) ([]string, error) {
	ref, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("Unable to parse base url %s: %v", baseURL, err)
	}
	if !ref.IsAbs() {
		return nil, errors.New("base url must be absolute")
	}

	var urls []string
	tokenizer := html.NewTokenizer(r)
	for {
		t := tokenizer.Next()
		if t == html.ErrorToken {
			break
		}
		if t != html.StartTagToken {
			continue
		}
		token := tokenizer.Token()
		// at this time it ignores all other types of tags
		if token.Data != "a" {
			continue
		}
		for _, attr := range token.Attr {
			if attr.Key != "href" {
				continue
			}
			u, err := ref.Parse(attr.Val)
			if err != nil {
				continue
			}
			u.Fragment = ""
			if u.Scheme == "http" || u.Scheme == "https" {
				urls = append(urls, u.String())
			}
			break
		}
	}
	return urls, nil
}
