package steps

import (
	"context"
	"net/http"
	"regexp"
	"strings"

	"github.com/cucumber/godog"
	"github.com/loykin/occaccept/internal/constants"
	"github.com/loykin/occaccept/pkg/fail"
	"github.com/loykin/occaccept/pkg/occ"
	"github.com/loykin/occaccept/pkg/verify"
	"github.com/stretchr/testify/assert"
	"github.com/tidwall/gjson"
)

// RegisterStorage registers local external storage steps.
func (s *Steps) RegisterStorage(r Registrar) {
	r.Step(`^the administrator creates the local storage mount "([^"]*)" using the occ command$`, func(ctx context.Context, mount string) error {
		_, err := s.createLocalStorage(ctx, mount)
		return err
	})
	r.Step(`^the administrator has created the local storage mount "([^"]*)"$`, func(ctx context.Context, mount string) error {
		res, err := s.createLocalStorage(ctx, mount)
		if err != nil {
			return err
		}
		return verify.Success(res)
	})

	r.Step(`^the administrator sets the external storage "([^"]*)" to read-only using the occ command$`, func(ctx context.Context, mount string) error {
		_, err := s.setMountOption(ctx, mount, "read_only", "1")
		return err
	})
	r.Step(`^the administrator has set the external storage "([^"]*)" to read-only$`, func(ctx context.Context, mount string) error {
		res, err := s.setMountOption(ctx, mount, "read_only", "1")
		if err != nil {
			return err
		}
		return verify.Success(res)
	})
	r.Step(`^the administrator sets the external storage "([^"]*)" to be never scanned automatically using the occ command$`, func(ctx context.Context, mount string) error {
		_, err := s.setMountOption(ctx, mount, "filesystem_check_changes", "0")
		return err
	})
	r.Step(`^the administrator has set the external storage "([^"]*)" to be never scanned automatically$`, func(ctx context.Context, mount string) error {
		res, err := s.setMountOption(ctx, mount, "filesystem_check_changes", "0")
		if err != nil {
			return err
		}
		return verify.Success(res)
	})

	r.Step(`^the administrator (adds|removes) (user|group) "([^"]*)" (?:as|from) the applicable (?:user|group) for the last local storage mount using the occ command$`, func(ctx context.Context, action, kind, name string) error {
		_, err := s.applicableForLastMount(ctx, action, kind, name)
		return err
	})
	r.Step(`^the administrator has (added|removed) (user|group) "([^"]*)" (?:as|from) the applicable (?:user|group) for the last local storage mount$`, func(ctx context.Context, action, kind, name string) error {
		res, err := s.applicableForLastMount(ctx, action, kind, name)
		if err != nil {
			return err
		}
		return verify.Success(res)
	})
	r.Step(`^the administrator (adds|removes) (user|group) "([^"]*)" (?:as|from) the applicable (?:user|group) for local storage mount "([^"]*)" using the occ command$`, func(ctx context.Context, action, kind, name, mount string) error {
		_, err := s.applicableForMount(ctx, action, kind, name, mount)
		return err
	})
	r.Step(`^the administrator has (added|removed) (user|group) "([^"]*)" (?:as|from) the applicable (?:user|group) for local storage mount "([^"]*)"$`, func(ctx context.Context, action, kind, name, mount string) error {
		res, err := s.applicableForMount(ctx, action, kind, name, mount)
		if err != nil {
			return err
		}
		return verify.Success(res)
	})

	r.Step(`^the administrator lists the local storage using the occ command$`, func(ctx context.Context) error {
		_, err := s.listLocalStorage(ctx)
		return err
	})
	r.Step(`^the following local storage should exist$`, s.localStorageShouldExist)
	r.Step(`^the following local storage should not exist$`, s.localStorageShouldNotExist)
	r.Step(`^the following local storage should be listed:$`, s.localStorageShouldBeListed)
	r.Step(`^the administrator deletes local storage "([^"]*)" using the occ command$`, s.deleteLocalStorage)
}

var (
	storageCreated = regexp.MustCompile(`created with id (\d+)`)
	anyNumber      = regexp.MustCompile(`\d+`)
)

// storageIDFrom reads the id from "Storage created with id N".
func storageIDFrom(stdout string) string {
	if m := storageCreated.FindStringSubmatch(stdout); m != nil {
		return m[1]
	}
	all := anyNumber.FindAllString(stdout, -1)
	if len(all) == 0 {
		return ""
	}
	return all[len(all)-1]
}

// createLocalStorage creates the backing directory through the testing
// app, then mounts it at /mount and records the storage id.
func (s *Steps) createLocalStorage(ctx context.Context, mount string) (occ.Result, error) {
	dir := constants.LocalStorageDir + "/" + mount
	resp, err := s.deps.Client.MkDir(ctx, dir)
	if err != nil {
		return occ.Result{}, err
	}
	if resp.StatusCode != http.StatusOK {
		return occ.Result{}, fail.Assertf("could not create directory %s on the server, status %d", dir, resp.StatusCode)
	}
	root, err := s.deps.Client.ServerRoot(ctx)
	if err != nil {
		return occ.Result{}, err
	}
	cmd := occ.New("files_external:create").
		Arg("/"+mount, "local", "null::null", "-c", "datadir="+strings.TrimRight(root, "/")+"/"+dir)
	res, err := s.run(ctx, cmd)
	if err != nil {
		return res, err
	}
	if id := storageIDFrom(res.Stdout); id != "" && res.ExitCode == 0 {
		s.sc.AddStorageID(mount, id)
	}
	return res, nil
}

func (s *Steps) setMountOption(ctx context.Context, mount, key, value string) (occ.Result, error) {
	id, err := s.sc.StorageID(mount)
	if err != nil {
		return occ.Result{}, err
	}
	return s.run(ctx, occ.New("files_external:option").Arg(id, key, value))
}

func (s *Steps) applicableForMount(ctx context.Context, action, kind, name, mount string) (occ.Result, error) {
	id, err := s.sc.StorageID(mount)
	if err != nil {
		return occ.Result{}, err
	}
	flag := "remove-"
	if action == "adds" || action == "added" {
		flag = "add-"
	}
	return s.run(ctx, occ.New("files_external:applicable").Arg(id).Flag(flag+kind, name))
}

func (s *Steps) applicableForLastMount(ctx context.Context, action, kind, name string) (occ.Result, error) {
	last, err := s.sc.LastMount()
	if err != nil {
		return occ.Result{}, err
	}
	return s.applicableForMount(ctx, action, kind, name, last.Name)
}

func (s *Steps) listLocalStorage(ctx context.Context) (occ.Result, error) {
	return s.run(ctx, occ.New("files_external:list").FlagEq("output", "json"))
}

type mountEntry struct {
	id, point string
}

// mountPoints lists mounts in output order, points without the leading slash.
func mountPoints(stdout string) ([]mountEntry, error) {
	if !gjson.Valid(stdout) {
		return nil, fail.Structuralf("files_external:list output is not JSON: %s", stdout)
	}
	var out []mountEntry
	gjson.Parse(stdout).ForEach(func(_, v gjson.Result) bool {
		out = append(out, mountEntry{
			id:    v.Get("mount_id").String(),
			point: strings.TrimLeft(v.Get("mount_point").String(), "/"),
		})
		return true
	})
	return out, nil
}

func mountPointValues(mounts []mountEntry) []string {
	out := make([]string, 0, len(mounts))
	for _, m := range mounts {
		out = append(out, m.point)
	}
	return out
}

// lastMountID returns the id of the last listed mount at folder.
func lastMountID(mounts []mountEntry, folder string) string {
	id := ""
	for _, m := range mounts {
		if m.point == folder {
			id = m.id
		}
	}
	return id
}

func (s *Steps) localStorageShouldExist(table *godog.Table) error {
	rows, err := columnsHash(table, "localStorage")
	if err != nil {
		return err
	}
	res, err := s.lastResult()
	if err != nil {
		return err
	}
	points, err := mountPoints(res.Stdout)
	if err != nil {
		return err
	}
	t := &fail.T{}
	for _, row := range rows {
		assert.Contains(t, mountPointValues(points), row["localStorage"])
	}
	return t.Err()
}

func (s *Steps) localStorageShouldNotExist(ctx context.Context, table *godog.Table) error {
	rows, err := columnsHash(table, "localStorage")
	if err != nil {
		return err
	}
	res, err := s.listLocalStorage(ctx)
	if err != nil {
		return err
	}
	points, err := mountPoints(res.Stdout)
	if err != nil {
		return err
	}
	t := &fail.T{}
	for _, row := range rows {
		assert.NotContains(t, mountPointValues(points), row["localStorage"])
	}
	return t.Err()
}

// storageColumns maps table columns onto files_external:list JSON fields.
var storageColumns = []struct {
	column, field string
	prefix        bool
}{
	{"Storage", "storage", false},
	{"AuthenticationType", "authentication_type", false},
	{"Configuration", "configuration", true},
	{"Options", "options", false},
	{"ApplicableUsers", "applicable_users", false},
	{"ApplicableGroups", "applicable_groups", false},
}

func (s *Steps) localStorageShouldBeListed(table *godog.Table) error {
	rows, err := columnsHash(table, "MountPoint")
	if err != nil {
		return err
	}
	res, err := s.lastResult()
	if err != nil {
		return err
	}
	if !gjson.Valid(res.Stdout) {
		return fail.Structuralf("files_external:list output is not JSON: %s", res.Stdout)
	}
	listed := gjson.Parse(res.Stdout).Array()
	t := &fail.T{}
	for _, want := range rows {
		found := false
		for _, entry := range listed {
			if entry.Get("mount_point").String() != want["MountPoint"] {
				continue
			}
			found = true
			for _, c := range storageColumns {
				expected, ok := want[c.column]
				if !ok {
					continue
				}
				actual := entry.Get(c.field).String()
				if c.prefix {
					assert.True(t, strings.HasPrefix(actual, expected), "%s %q does not start with %q", c.column, actual, expected)
					continue
				}
				assert.Equal(t, expected, actual, "%s of %s", c.column, want["MountPoint"])
			}
		}
		if !found {
			return fail.Mismatch("Expected local storages not found", want["MountPoint"], res.Stdout)
		}
	}
	return t.Err()
}

func (s *Steps) deleteLocalStorage(ctx context.Context, folder string) error {
	res, err := s.listLocalStorage(ctx)
	if err != nil {
		return err
	}
	points, err := mountPoints(res.Stdout)
	if err != nil {
		return err
	}
	id := lastMountID(points, folder)
	if id == "" {
		return fail.Structuralf("Id not found for folder to be deleted: %s", folder)
	}
	_, err = s.run(ctx, occ.New("files_external:delete").Switch("yes").Arg(id))
	return err
}
