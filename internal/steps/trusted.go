package steps

import (
	"context"
	"net/http"

	"github.com/cucumber/godog"
	"github.com/loykin/occaccept/pkg/fail"
)

// RegisterTrustedServers registers the federation trusted server steps.
func (s *Steps) RegisterTrustedServers(r Registrar) {
	r.Step(`^the administrator adds url "([^"]*)" as trusted server using the testing API$`, s.addTrustedServer)
	r.Step(`^the administrator has added url "([^"]*)" as trusted server$`, s.hasAddedTrustedServer)
	r.Step(`^the administrator deletes url "([^"]*)" from trusted servers using the testing API$`, s.deleteTrustedServer)
	r.Step(`^the administrator deletes all trusted servers using the testing API$`, s.deleteAllTrustedServers)
	r.Step(`^the trusted server list is cleared$`, s.trustedServersCleared)
	r.Step(`^url "([^"]*)" should be a trusted server$`, s.urlShouldBeTrusted)
	r.Step(`^url "([^"]*)" should not be a trusted server$`, s.urlShouldNotBeTrusted)
	r.Step(`^the trusted server list should include these urls:$`, s.trustedListShouldInclude)
	r.Step(`^the trusted server list should be empty$`, s.trustedListShouldBeEmpty)
}

// urlForMessage shows the url as written and, when inline codes changed it,
// the substituted value.
func (s *Steps) urlForMessage(raw string) string {
	if expanded := s.sc.Env.Substitute(raw); expanded != raw {
		return raw + " (" + expanded + ")"
	}
	return raw
}

func (s *Steps) addTrustedServer(ctx context.Context, url string) error {
	resp, err := s.deps.Client.AddTrustedServer(ctx, s.sc.Env.Substitute(url))
	if err != nil {
		return err
	}
	s.sc.SetResponse(resp)
	return nil
}

func (s *Steps) hasAddedTrustedServer(ctx context.Context, url string) error {
	if err := s.addTrustedServer(ctx, url); err != nil {
		return err
	}
	resp, err := s.sc.Response()
	if err != nil {
		return err
	}
	if resp.StatusCode != http.StatusCreated {
		return fail.Assertf("Could not add trusted server %s. The request failed with status %d", s.urlForMessage(url), resp.StatusCode)
	}
	return nil
}

func (s *Steps) deleteTrustedServer(ctx context.Context, url string) error {
	resp, err := s.deps.Client.DeleteTrustedServer(ctx, s.sc.Env.Substitute(url))
	if err != nil {
		return err
	}
	s.sc.SetResponse(resp)
	return nil
}

func (s *Steps) deleteAllTrustedServers(ctx context.Context) error {
	resp, err := s.deps.Client.DeleteAllTrustedServers(ctx)
	if err != nil {
		return err
	}
	s.sc.SetResponse(resp)
	return nil
}

func (s *Steps) trustedServersCleared(ctx context.Context) error {
	if err := s.deleteAllTrustedServers(ctx); err != nil {
		return err
	}
	resp, err := s.sc.Response()
	if err != nil {
		return err
	}
	if resp.StatusCode != http.StatusNoContent {
		return fail.Mismatch("Failed to clear all trusted servers "+string(resp.Body), http.StatusNoContent, resp.StatusCode)
	}
	return nil
}

func (s *Steps) isTrusted(ctx context.Context, url string) (bool, error) {
	servers, err := s.deps.Client.TrustedServers(ctx)
	if err != nil {
		return false, err
	}
	want := s.sc.Env.Substitute(url)
	for _, srv := range servers {
		if srv.URL == want {
			return true, nil
		}
	}
	return false, nil
}

func (s *Steps) urlShouldBeTrusted(ctx context.Context, url string) error {
	ok, err := s.isTrusted(ctx, url)
	if err != nil {
		return err
	}
	if !ok {
		return fail.Assertf("URL %s is not a trusted server but should be", s.urlForMessage(url))
	}
	return nil
}

func (s *Steps) urlShouldNotBeTrusted(ctx context.Context, url string) error {
	ok, err := s.isTrusted(ctx, url)
	if err != nil {
		return err
	}
	if ok {
		return fail.Assertf("URL %s is a trusted server but is not expected to be", s.urlForMessage(url))
	}
	return nil
}

func (s *Steps) trustedListShouldInclude(ctx context.Context, table *godog.Table) error {
	rows, err := columnsHash(table, "url")
	if err != nil {
		return err
	}
	servers, err := s.deps.Client.TrustedServers(ctx)
	if err != nil {
		return err
	}
	trusted := make(map[string]struct{}, len(servers))
	for _, srv := range servers {
		trusted[srv.URL] = struct{}{}
	}
	for _, row := range rows {
		if _, ok := trusted[s.sc.Env.Substitute(row["url"])]; !ok {
			return fail.Assertf("URL %s is not a trusted server but should be", s.urlForMessage(row["url"]))
		}
	}
	return nil
}

func (s *Steps) trustedListShouldBeEmpty(ctx context.Context) error {
	servers, err := s.deps.Client.TrustedServers(ctx)
	if err != nil {
		return err
	}
	if len(servers) > 0 {
		return fail.Mismatch("Trusted server list is not empty", 0, len(servers))
	}
	return nil
}
