// Package testserver is an in-memory stand-in for an ownCloud server with
// the testing app enabled. It serves the OCS endpoints the step layer
// uses and interprets the occ commands it sends, so steps and features can
// be exercised without a real installation.
package testserver

import (
	"net/http"
	"path"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/kballard/go-shellquote"
	"github.com/loykin/occaccept/internal/common"
)

const adminKey = "testserver.user"

// Options seed the fake server.
type Options struct {
	Admin         string
	AdminPassword string
	// Users maps user names to passwords; the admin is added automatically.
	Users map[string]string
	// Groups maps group names to members.
	Groups     map[string][]string
	ServerRoot string
	// UpgradeExitCode is returned by "occ upgrade"; non-zero leaves the
	// server in maintenance mode.
	UpgradeExitCode int
}

type trustedServer struct {
	URL string
	ID  int
}

type job struct {
	ID      int
	Class   string
	LastRun time.Time
}

// Server is the fake. All state is guarded by mu.
type Server struct {
	opts   Options
	engine *gin.Engine

	mu            sync.Mutex
	system        map[string]configValue
	apps          map[string]map[string]string
	enabledApps   map[string]bool
	trusted       []trustedServer
	nextTrustedID int
	mounts        []*mount
	nextMountID   int
	certificates  []string
	jobs          []job
	nextJobID     int
	dirs          map[string]bool
	maintenance   bool
	commands      []string
	lastEnv       map[string]string
}

// New returns a Server seeded from opts.
func New(opts Options) *Server {
	if opts.Admin == "" {
		opts.Admin = "admin"
	}
	if opts.AdminPassword == "" {
		opts.AdminPassword = "admin"
	}
	if opts.ServerRoot == "" {
		opts.ServerRoot = "/var/www/owncloud"
	}
	users := map[string]string{opts.Admin: opts.AdminPassword}
	for u, p := range opts.Users {
		users[u] = p
	}
	opts.Users = users
	if opts.Groups == nil {
		opts.Groups = map[string][]string{}
	}
	if _, ok := opts.Groups["admin"]; !ok {
		opts.Groups["admin"] = []string{opts.Admin}
	}

	s := &Server{
		opts: opts,
		system: map[string]configValue{
			"installed":     {Type: "boolean", Raw: "true"},
			"version":       {Type: "string", Raw: "10.11.0.1"},
			"loglevel":      {Type: "integer", Raw: "2"},
			"datadirectory": {Type: "string", Raw: opts.ServerRoot + "/data"},
			"dbtype":        {Type: "string", Raw: "sqlite3"},
			"dbpassword":    {Type: "string", Raw: "database-secret"},
		},
		apps: map[string]map[string]string{
			"core": {
				"backgroundjobs_mode":     "ajax",
				"OC_Channel":              "stable",
				"shareapi_enabled":        "yes",
				"shareapi_allow_links":    "yes",
				"enable_external_storage": "no",
			},
			"files_sharing": {"incoming_server2server_share_enabled": "yes"},
		},
		enabledApps:   map[string]bool{"files": true, "files_sharing": true, "testing": true, "files_external": true},
		nextTrustedID: 1,
		nextMountID:   1,
		nextJobID:     1,
		dirs:          map[string]bool{},
	}
	for _, class := range []string{
		`OCA\Files\BackgroundJob\ScanFiles`,
		`OCA\Files_Trashbin\BackgroundJob\ExpireTrash`,
		`OCA\Files_Versions\BackgroundJob\ExpireVersions`,
		`OC\Authentication\Token\DefaultTokenCleanupJob`,
	} {
		s.AddJob(class)
	}
	s.engine = s.routes()
	return s
}

// Handler returns the HTTP handler serving the fake.
func (s *Server) Handler() http.Handler { return s.engine }

func (s *Server) routes() *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.Recovery())

	engine.GET("/status.php", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"installed": true, "maintenance": s.Maintenance(), "version": "10.11.0.1", "productname": "ownCloud"})
	})

	ocs := engine.Group("/ocs/:api", s.checkAPI, s.authenticate)
	ocs.GET("/cloud/capabilities", s.capabilities)

	admin := ocs.Group("", s.requireAdmin)
	admin.GET("/cloud/apps", s.listApps)
	admin.POST("/cloud/apps/:app", func(c *gin.Context) { s.setAppEnabled(c, true) })
	admin.DELETE("/cloud/apps/:app", func(c *gin.Context) { s.setAppEnabled(c, false) })

	testing := admin.Group("/apps/testing/api/v1")
	testing.GET("/trustedservers", s.listTrustedServers)
	testing.POST("/trustedservers", s.addTrustedServer)
	testing.DELETE("/trustedservers", s.deleteTrustedServer)
	testing.DELETE("/trustedservers/all", s.deleteAllTrustedServers)
	testing.POST("/app/:app/:param", s.setAppConfig)
	testing.POST("/apps", s.setAppConfigs)
	testing.GET("/serverroot", func(c *gin.Context) {
		respond(c, http.StatusOK, gin.H{"rootDirectory": s.opts.ServerRoot})
	})
	testing.POST("/dir", s.mkdir)
	testing.POST("/occ", s.occ)
	return engine
}

func (s *Server) checkAPI(c *gin.Context) {
	switch c.Param("api") {
	case "v1.php", "v2.php":
		c.Next()
	default:
		c.AbortWithStatus(http.StatusNotFound)
	}
}

func (s *Server) authenticate(c *gin.Context) {
	user, password, ok := c.Request.BasicAuth()
	if !ok || s.opts.Users[user] == "" || s.opts.Users[user] != password {
		respond(c, http.StatusUnauthorized, nil)
		c.Abort()
		return
	}
	c.Set(adminKey, user)
	c.Next()
}

func (s *Server) requireAdmin(c *gin.Context) {
	if c.GetString(adminKey) != s.opts.Admin {
		respond(c, http.StatusForbidden, nil)
		c.Abort()
		return
	}
	c.Next()
}

// Capabilities that depend on app config are derived on every request.
func (s *Server) capabilities(c *gin.Context) {
	s.mu.Lock()
	core := s.apps["core"]
	caps := gin.H{
		"core": gin.H{
			"pollinterval": 60,
			"webdav-root":  "remote.php/webdav",
		},
		"files": gin.H{
			"bigfilechunking":   true,
			"blacklisted_files": []string{".htaccess"},
			"undelete":          true,
			"versioning":        true,
		},
		"files_sharing": gin.H{
			"api_enabled": core["shareapi_enabled"] != "no",
			"public": gin.H{
				"enabled": core["shareapi_allow_links"] != "no",
				"password": gin.H{
					"enforced": core["shareapi_enforce_links_password"] == "yes",
				},
			},
			"resharing":     core["shareapi_allow_resharing"] != "no",
			"group_sharing": core["shareapi_allow_group_sharing"] != "no",
			"federation": gin.H{
				"incoming": s.apps["files_sharing"]["incoming_server2server_share_enabled"] != "no",
				"outgoing": s.apps["files_sharing"]["outgoing_server2server_share_enabled"] != "no",
			},
		},
		"dav": gin.H{"chunking": "1.0"},
	}
	s.mu.Unlock()
	respond(c, http.StatusOK, gin.H{
		"version":      gin.H{"major": 10, "minor": 11, "micro": 0, "string": "10.11.0", "edition": "Community"},
		"capabilities": caps,
	})
}

func (s *Server) listApps(c *gin.Context) {
	filter := c.Query("filter")
	s.mu.Lock()
	apps := make([]string, 0, len(s.enabledApps))
	for app, enabled := range s.enabledApps {
		switch {
		case filter == "enabled" && !enabled, filter == "disabled" && enabled:
			continue
		}
		apps = append(apps, app)
	}
	s.mu.Unlock()
	sort.Strings(apps)
	respond(c, http.StatusOK, gin.H{"apps": apps})
}

func (s *Server) setAppEnabled(c *gin.Context, enabled bool) {
	s.mu.Lock()
	s.enabledApps[c.Param("app")] = enabled
	s.mu.Unlock()
	respond(c, http.StatusOK, nil)
}

func (s *Server) listTrustedServers(c *gin.Context) {
	s.mu.Lock()
	list := make([]interface{}, 0, len(s.trusted))
	for _, t := range s.trusted {
		list = append(list, gin.H{"id": t.ID, "url": t.URL, "status": 2})
	}
	s.mu.Unlock()
	respond(c, http.StatusOK, list)
}

func (s *Server) addTrustedServer(c *gin.Context) {
	u := strings.TrimSpace(c.PostForm("url"))
	if u == "" {
		respond(c, http.StatusBadRequest, nil)
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, t := range s.trusted {
		if t.URL == u {
			respond(c, http.StatusConflict, nil)
			return
		}
	}
	t := trustedServer{URL: u, ID: s.nextTrustedID}
	s.nextTrustedID++
	s.trusted = append(s.trusted, t)
	respond(c, http.StatusCreated, gin.H{"id": t.ID, "url": t.URL})
}

func (s *Server) deleteTrustedServer(c *gin.Context) {
	u := strings.TrimSpace(c.Query("url"))
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, t := range s.trusted {
		if t.URL == u {
			s.trusted = append(s.trusted[:i], s.trusted[i+1:]...)
			respond(c, http.StatusOK, nil)
			return
		}
	}
	respond(c, http.StatusNotFound, nil)
}

func (s *Server) deleteAllTrustedServers(c *gin.Context) {
	s.mu.Lock()
	s.trusted = nil
	s.mu.Unlock()
	respond(c, http.StatusNoContent, nil)
}

func (s *Server) setAppConfig(c *gin.Context) {
	s.mu.Lock()
	s.setApp(c.Param("app"), c.Param("param"), c.PostForm("value"))
	s.mu.Unlock()
	respond(c, http.StatusOK, nil)
}

var batchKey = regexp.MustCompile(`^values\[(\d+)\]\[(appid|configkey|value)\]$`)

func (s *Server) setAppConfigs(c *gin.Context) {
	if err := c.Request.ParseForm(); err != nil {
		respond(c, http.StatusBadRequest, nil)
		return
	}
	entries := map[int]map[string]string{}
	for key, values := range c.Request.PostForm {
		m := batchKey.FindStringSubmatch(key)
		if m == nil || len(values) == 0 {
			continue
		}
		i, _ := strconv.Atoi(m[1])
		if entries[i] == nil {
			entries[i] = map[string]string{}
		}
		entries[i][m[2]] = values[0]
	}
	idx := make([]int, 0, len(entries))
	for i := range entries {
		idx = append(idx, i)
	}
	sort.Ints(idx)

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, i := range idx {
		e := entries[i]
		if e["appid"] == "" || e["configkey"] == "" {
			respond(c, http.StatusBadRequest, nil)
			return
		}
		s.setApp(e["appid"], e["configkey"], e["value"])
	}
	respond(c, http.StatusOK, nil)
}

func (s *Server) mkdir(c *gin.Context) {
	dir := strings.TrimSpace(c.PostForm("dir"))
	if dir == "" {
		respond(c, http.StatusBadRequest, nil)
		return
	}
	s.mu.Lock()
	s.dirs[path.Clean("/"+dir)] = true
	s.mu.Unlock()
	respond(c, http.StatusOK, nil)
}

var envKey = regexp.MustCompile(`^env_variables\[([^\]]+)\]$`)

func (s *Server) occ(c *gin.Context) {
	if err := c.Request.ParseForm(); err != nil {
		respond(c, http.StatusBadRequest, nil)
		return
	}
	line := c.Request.PostForm.Get("command")
	env := map[string]string{}
	for key, values := range c.Request.PostForm {
		if m := envKey.FindStringSubmatch(key); m != nil && len(values) > 0 {
			env[m[1]] = values[0]
		}
	}
	argv, err := shellquote.Split(line)
	if err != nil {
		respond(c, http.StatusBadRequest, nil)
		return
	}
	common.GetLogger().WithComponent("testserver").WithCommand(line).Debug("interpreting occ command")

	s.mu.Lock()
	s.commands = append(s.commands, line)
	s.lastEnv = env
	out := s.run(argv)
	s.mu.Unlock()

	respond(c, http.StatusOK, gin.H{"code": out.code, "stdOut": out.stdout.String(), "stdErr": out.stderr.String()})
}

func (s *Server) setApp(app, key, value string) {
	if s.apps[app] == nil {
		s.apps[app] = map[string]string{}
	}
	s.apps[app][key] = value
}

// AddJob queues a background job and returns its id.
func (s *Server) AddJob(class string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextJobID
	s.nextJobID++
	s.jobs = append(s.jobs, job{ID: id, Class: class, LastRun: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)})
	return id
}

// Commands returns the occ command lines received so far.
func (s *Server) Commands() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.commands...)
}

// LastEnv returns the environment variables sent with the last occ call.
func (s *Server) LastEnv() map[string]string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]string, len(s.lastEnv))
	for k, v := range s.lastEnv {
		out[k] = v
	}
	return out
}

// SystemConfig returns a system config value as occ would print it.
func (s *Server) SystemConfig(key string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.system[key]
	return v.Raw, ok
}

// AppConfig returns an app config value.
func (s *Server) AppConfig(app, key string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.apps[app][key]
	return v, ok
}

// TrustedURLs returns the trusted server URLs in insertion order.
func (s *Server) TrustedURLs() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, 0, len(s.trusted))
	for _, t := range s.trusted {
		out = append(out, t.URL)
	}
	return out
}

// Certificates returns the imported certificate names.
func (s *Server) Certificates() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.certificates...)
}

// Dirs returns the directories created through the testing app.
func (s *Server) Dirs() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, 0, len(s.dirs))
	for d := range s.dirs {
		out = append(out, d)
	}
	sort.Strings(out)
	return out
}

// AppEnabled reports whether app is enabled.
func (s *Server) AppEnabled(app string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.enabledApps[app]
}

// Maintenance reports whether maintenance mode is on.
func (s *Server) Maintenance() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.maintenance
}

// SetMaintenance switches maintenance mode, as status.php reports it.
func (s *Server) SetMaintenance(on bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.maintenance = on
}
