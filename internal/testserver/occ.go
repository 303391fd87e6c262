package testserver

import (
	"encoding/json"
	"fmt"
	"path"
	"sort"
	"strconv"
	"strings"
)

type configValue struct {
	Type string
	Raw  string
}

// jsonValue converts the stored value into what config:list prints.
func (v configValue) jsonValue() interface{} {
	switch v.Type {
	case "boolean":
		return v.Raw == "true"
	case "integer":
		n, _ := strconv.ParseInt(v.Raw, 10, 64)
		return n
	case "double":
		f, _ := strconv.ParseFloat(v.Raw, 64)
		return f
	case "json":
		return json.RawMessage(v.Raw)
	}
	return v.Raw
}

type mount struct {
	ID       int
	Point    string
	Backend  string
	Config   map[string]string
	Options  map[string]string
	Users    []string
	Groups   []string
	ReadOnly bool
}

type output struct {
	code   int
	stdout strings.Builder
	stderr strings.Builder
}

func (o *output) println(format string, args ...interface{}) {
	fmt.Fprintf(&o.stdout, format+"\n", args...)
}

// exception prints a Symfony console style exception block and fails.
func (o *output) exception(class, format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	fmt.Fprintf(&o.stderr, "\n  [%s]  \n  %s  \n\n", class, msg)
	o.code = 1
}

const (
	invalidArgument  = "InvalidArgumentException"
	runtimeException = `Symfony\Component\Console\Exception\RuntimeException`
	notFound         = `OCA\Files_External\NotFoundException`
)

// valueFlags take the following token as their value when not written as
// --name=value.
var valueFlags = map[string]bool{
	"value": true, "type": true, "level": true, "timezone": true, "backend": true,
	"file": true, "rotate-size": true, "path": true, "group": true, "groups": true,
	"output": true, "add-user": true, "remove-user": true, "add-group": true,
	"remove-group": true, "c": true, "config": true,
}

type args struct {
	pos   []string
	flags map[string][]string
}

func (a args) has(name string) bool { _, ok := a.flags[name]; return ok }

func (a args) flag(name string) string {
	if v := a.flags[name]; len(v) > 0 {
		return v[len(v)-1]
	}
	return ""
}

func parseArgs(argv []string) args {
	a := args{flags: map[string][]string{}}
	for i := 0; i < len(argv); i++ {
		tok := argv[i]
		var name string
		switch {
		case strings.HasPrefix(tok, "--"):
			name = tok[2:]
		case strings.HasPrefix(tok, "-") && len(tok) == 2:
			name = tok[1:]
		default:
			a.pos = append(a.pos, tok)
			continue
		}
		if k, v, ok := strings.Cut(name, "="); ok {
			a.flags[k] = append(a.flags[k], v)
			continue
		}
		if valueFlags[name] && i+1 < len(argv) {
			i++
			a.flags[name] = append(a.flags[name], argv[i])
			continue
		}
		a.flags[name] = append(a.flags[name], "")
	}
	return a
}

// run interprets one occ invocation. Callers hold s.mu.
func (s *Server) run(argv []string) *output {
	out := &output{}
	if len(argv) == 0 {
		out.println("ownCloud version 10.11.0")
		return out
	}
	verb, a := argv[0], parseArgs(argv[1:])
	switch {
	case verb == "config:system:set":
		s.systemSet(out, a)
	case verb == "config:system:get":
		s.systemGet(out, a)
	case verb == "config:system:delete":
		s.systemDelete(out, a)
	case verb == "config:app:set":
		s.appSet(out, a)
	case verb == "config:app:get":
		s.appGet(out, a)
	case verb == "config:app:delete":
		s.appDelete(out, a)
	case verb == "config:list":
		s.configList(out, a)
	case verb == "background:queue:status":
		s.queueStatus(out)
	case verb == "background:queue:delete":
		s.queueDelete(out, a)
	case verb == "background:cron", verb == "background:ajax", verb == "background:webcron":
		mode := strings.TrimPrefix(verb, "background:")
		s.setApp("core", "backgroundjobs_mode", mode)
		out.println("Set mode for background jobs to '%s'", mode)
	case verb == "files:scan":
		s.filesScan(out, a)
	case verb == "files:cleanup":
		out.println("0 orphaned file cache entries deleted")
	case verb == "trashbin:cleanup":
		s.userCleanup(out, a, "Remove deleted files of   %s", "Remove all deleted files")
	case verb == "versions:cleanup":
		s.userCleanup(out, a, "Delete versions of   %s", "Delete all versions")
	case verb == "files_external:create":
		s.externalCreate(out, a)
	case verb == "files_external:list":
		s.externalList(out, a)
	case verb == "files_external:option":
		s.externalOption(out, a)
	case verb == "files_external:applicable":
		s.externalApplicable(out, a)
	case verb == "files_external:delete":
		s.externalDelete(out, a)
	case verb == "security:certificates":
		s.certificatesList(out)
	case verb == "security:certificates:import":
		s.certificateImport(out, a)
	case verb == "security:certificates:remove":
		s.certificateRemove(out, a)
	case verb == "log:manage":
		s.logManage(out, a)
	case verb == "log:owncloud":
		s.logOwncloud(out, a)
	case verb == "maintenance:repair" && a.has("list"):
		out.println("Found 3 repair steps")
		out.println("")
		for _, step := range []string{`OC\Repair\RepairMimeTypes`, `OC\Repair\RepairMismatchFileCachePath`, `OC\Repair\FillETags`} {
			out.println(" - %s", step)
		}
	case verb == "maintenance:mode":
		s.maintenanceMode(out, a)
	case verb == "upgrade":
		s.upgrade(out)
	default:
		out.exception(`Symfony\Component\Console\Exception\CommandNotFoundException`, `Command "%s" is not defined.`, verb)
	}
	return out
}

func (s *Server) systemSet(out *output, a args) {
	if len(a.pos) == 0 {
		out.exception(runtimeException, `Not enough arguments (missing: "name").`)
		return
	}
	key, value := a.pos[0], a.flag("value")
	typ := a.flag("type")
	if typ == "" {
		typ = "string"
	}
	switch typ {
	case "boolean":
		if value != "true" && value != "false" {
			out.exception(invalidArgument, "Unable to parse value as boolean")
			return
		}
	case "integer":
		if _, err := strconv.Atoi(value); err != nil {
			out.exception(invalidArgument, "Non-numeric value specified")
			return
		}
	case "double":
		if _, err := strconv.ParseFloat(value, 64); err != nil {
			out.exception(invalidArgument, "Non-numeric value specified")
			return
		}
	case "json":
		if !json.Valid([]byte(value)) {
			out.exception(invalidArgument, "Unable to parse value as json")
			return
		}
	case "string":
	default:
		out.exception(invalidArgument, "Invalid type")
		return
	}
	s.system[key] = configValue{Type: typ, Raw: value}
	out.println("System config value %s set to %s %s", key, typ, value)
}

func (s *Server) systemGet(out *output, a args) {
	if len(a.pos) == 0 {
		out.exception(runtimeException, `Not enough arguments (missing: "name").`)
		return
	}
	v, ok := s.system[a.pos[0]]
	if !ok {
		out.code = 1
		return
	}
	out.println("%s", v.Raw)
}

func (s *Server) systemDelete(out *output, a args) {
	if len(a.pos) == 0 {
		out.exception(runtimeException, `Not enough arguments (missing: "name").`)
		return
	}
	key := a.pos[0]
	if _, ok := s.system[key]; !ok && a.has("error-if-not-exists") {
		out.stderr.WriteString("System config " + key + " could not be deleted because it did not exist\n")
		out.code = 1
		return
	}
	delete(s.system, key)
	out.println("System config value %s deleted", key)
}

func (s *Server) appSet(out *output, a args) {
	if len(a.pos) < 2 {
		out.exception(runtimeException, `Not enough arguments (missing: "app, name").`)
		return
	}
	app, key, value := a.pos[0], a.pos[1], a.flag("value")
	s.setApp(app, key, value)
	out.println("Config value %s for app %s set to %s", key, app, value)
}

func (s *Server) appGet(out *output, a args) {
	if len(a.pos) < 2 {
		out.exception(runtimeException, `Not enough arguments (missing: "app, name").`)
		return
	}
	v, ok := s.apps[a.pos[0]][a.pos[1]]
	if !ok {
		out.code = 1
		return
	}
	out.println("%s", v)
}

func (s *Server) appDelete(out *output, a args) {
	if len(a.pos) < 2 {
		out.exception(runtimeException, `Not enough arguments (missing: "app, name").`)
		return
	}
	delete(s.apps[a.pos[0]], a.pos[1])
	out.println("Config value %s of app %s deleted", a.pos[1], a.pos[0])
}

var sensitiveSystemKeys = map[string]bool{"dbpassword": true, "secret": true, "passwordsalt": true}

func (s *Server) configList(out *output, a args) {
	system := map[string]interface{}{}
	for k, v := range s.system {
		if sensitiveSystemKeys[k] && !a.has("private") {
			system[k] = "***REMOVED SENSITIVE VALUE***"
			continue
		}
		system[k] = v.jsonValue()
	}
	apps := map[string]interface{}{}
	for app, values := range s.apps {
		if len(a.pos) > 0 && a.pos[0] != app && a.pos[0] != "system" {
			continue
		}
		m := map[string]interface{}{}
		for k, v := range values {
			m[k] = v
		}
		apps[app] = m
	}
	doc := map[string]interface{}{"system": system, "apps": apps}
	if len(a.pos) > 0 && a.pos[0] == "system" {
		delete(doc, "apps")
	}
	b, err := json.MarshalIndent(doc, "", "    ")
	if err != nil {
		out.exception(runtimeException, "%s", err.Error())
		return
	}
	out.stdout.Write(b)
	out.stdout.WriteByte('\n')
}

func renderTable(headers []string, rows [][]string) string {
	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = len(h)
	}
	for _, r := range rows {
		for i, cell := range r {
			if len(cell) > widths[i] {
				widths[i] = len(cell)
			}
		}
	}
	var sb strings.Builder
	sep := func() {
		sb.WriteByte('+')
		for _, w := range widths {
			sb.WriteString(strings.Repeat("-", w+2))
			sb.WriteByte('+')
		}
		sb.WriteByte('\n')
	}
	line := func(cells []string) {
		sb.WriteByte('|')
		for i, w := range widths {
			cell := ""
			if i < len(cells) {
				cell = cells[i]
			}
			sb.WriteString(" " + cell + strings.Repeat(" ", w-len(cell)) + " |")
		}
		sb.WriteByte('\n')
	}
	sep()
	line(headers)
	sep()
	for _, r := range rows {
		line(r)
	}
	sep()
	return sb.String()
}

func (s *Server) queueStatus(out *output) {
	rows := make([][]string, 0, len(s.jobs))
	for _, j := range s.jobs {
		rows = append(rows, []string{strconv.Itoa(j.ID), j.Class, j.LastRun.Format("2006-01-02T15:04:05-07:00"), ""})
	}
	out.stdout.WriteString(renderTable([]string{"Job ID", "Job", "Last Run", "Job Arguments"}, rows))
}

func (s *Server) queueDelete(out *output, a args) {
	if len(a.pos) == 0 {
		out.exception(runtimeException, `Not enough arguments (missing: "Job ID").`)
		return
	}
	id, err := strconv.Atoi(a.pos[0])
	if err != nil {
		out.exception(invalidArgument, "Job ID must be a number")
		return
	}
	for i, j := range s.jobs {
		if j.ID == id {
			s.jobs = append(s.jobs[:i], s.jobs[i+1:]...)
			out.println("Job has been deleted.")
			return
		}
	}
	out.stderr.WriteString("Job with id " + a.pos[0] + " not found\n")
	out.code = 1
}

func (s *Server) sortedUsers() []string {
	users := make([]string, 0, len(s.opts.Users))
	for u := range s.opts.Users {
		users = append(users, u)
	}
	sort.Strings(users)
	return users
}

func (s *Server) scanUsers(out *output, users []string) {
	for i, u := range users {
		if _, ok := s.opts.Users[u]; !ok {
			out.println("Unknown user %d %s", i+1, u)
			out.code = 1
			continue
		}
		out.println("Starting scan for user %d out of %d (%s)", i+1, len(users), u)
	}
	out.stdout.WriteString(renderTable([]string{"Folders", "Files", "Elapsed time"}, [][]string{{"3", "5", "00:00:00"}}))
}

func (s *Server) filesScan(out *output, a args) {
	switch {
	case a.has("all"):
		s.scanUsers(out, s.sortedUsers())
	case a.has("path"):
		p := strings.TrimPrefix(path.Clean("/"+a.flag("path")), "/")
		user, _, _ := strings.Cut(p, "/")
		if _, ok := s.opts.Users[user]; !ok || user == "" {
			out.exception(invalidArgument, "Unknown user in path %s", a.flag("path"))
			return
		}
		s.scanUsers(out, []string{user})
	case a.has("group"), a.has("groups"):
		var groups []string
		for _, g := range append(a.flags["group"], a.flags["groups"]...) {
			for _, name := range strings.Split(g, ",") {
				if name = strings.TrimSpace(name); name != "" {
					groups = append(groups, name)
				}
			}
		}
		var users []string
		for _, g := range groups {
			members, ok := s.opts.Groups[g]
			if !ok {
				out.exception(invalidArgument, "Group name %s doesn't exist", g)
				return
			}
			out.println("Scanning group %s", g)
			users = append(users, members...)
		}
		s.scanUsers(out, users)
	case len(a.pos) > 0:
		s.scanUsers(out, a.pos)
	default:
		out.exception(invalidArgument, "Please specify the user id to scan, --all to scan for all users, --group=<group> or --path=<path>")
	}
}

func (s *Server) userCleanup(out *output, a args, userFormat, all string) {
	if len(a.pos) == 0 {
		out.println("%s", all)
		return
	}
	for _, u := range a.pos {
		if _, ok := s.opts.Users[u]; !ok {
			out.println("Unknown user %s", u)
			continue
		}
		out.println(userFormat, u)
	}
}

func (s *Server) findMount(out *output, a args) *mount {
	if len(a.pos) == 0 {
		out.exception(runtimeException, `Not enough arguments (missing: "mount_id").`)
		return nil
	}
	id, err := strconv.Atoi(a.pos[0])
	if err == nil {
		for _, m := range s.mounts {
			if m.ID == id {
				return m
			}
		}
	}
	out.exception(notFound, "Mount with id %s not found", a.pos[0])
	return nil
}

func (s *Server) externalCreate(out *output, a args) {
	if len(a.pos) < 3 {
		out.exception(runtimeException, `Not enough arguments (missing: "mount_point, storage_backend, authentication_backend").`)
		return
	}
	if a.pos[1] != "local" {
		out.exception(invalidArgument, "Storage backend with identifier %s not found", a.pos[1])
		return
	}
	m := &mount{
		ID:      s.nextMountID,
		Point:   path.Clean("/" + a.pos[0]),
		Backend: "Local",
		Config:  map[string]string{},
		Options: map[string]string{},
	}
	for _, kv := range append(a.flags["c"], a.flags["config"]...) {
		if k, v, ok := strings.Cut(kv, "="); ok {
			m.Config[k] = v
		}
	}
	s.nextMountID++
	s.mounts = append(s.mounts, m)
	out.println("Storage created with id %d", m.ID)
}

func joinPairs(m map[string]string, quote bool) string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		v := m[k]
		if quote {
			v = strconv.Quote(v)
		}
		parts = append(parts, k+": "+v)
	}
	return strings.Join(parts, ", ")
}

func (s *Server) externalList(out *output, a args) {
	type entry struct {
		MountID            int    `json:"mount_id"`
		MountPoint         string `json:"mount_point"`
		Storage            string `json:"storage"`
		AuthenticationType string `json:"authentication_type"`
		Configuration      string `json:"configuration"`
		Options            string `json:"options"`
		ApplicableUsers    string `json:"applicable_users"`
		ApplicableGroups   string `json:"applicable_groups"`
		Type               string `json:"type"`
	}
	entries := make([]entry, 0, len(s.mounts))
	for _, m := range s.mounts {
		users := strings.Join(m.Users, ", ")
		if len(m.Users) == 0 && len(m.Groups) == 0 {
			users = "All"
		}
		entries = append(entries, entry{
			MountID:            m.ID,
			MountPoint:         m.Point,
			Storage:            m.Backend,
			AuthenticationType: "None",
			Configuration:      joinPairs(m.Config, true),
			Options:            joinPairs(m.Options, false),
			ApplicableUsers:    users,
			ApplicableGroups:   strings.Join(m.Groups, ", "),
			Type:               "Admin",
		})
	}
	if strings.HasPrefix(a.flag("output"), "json") {
		b, _ := json.Marshal(entries)
		out.stdout.Write(b)
		out.stdout.WriteByte('\n')
		return
	}
	rows := make([][]string, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, []string{strconv.Itoa(e.MountID), e.MountPoint, e.Storage, e.AuthenticationType, e.Configuration, e.Options, e.ApplicableUsers, e.ApplicableGroups})
	}
	out.stdout.WriteString(renderTable([]string{"Mount ID", "Mount Point", "Storage", "Authentication Type", "Configuration", "Options", "Applicable Users", "Applicable Groups"}, rows))
}

func (s *Server) externalOption(out *output, a args) {
	m := s.findMount(out, a)
	if m == nil {
		return
	}
	if len(a.pos) < 3 {
		out.exception(runtimeException, `Not enough arguments (missing: "key, value").`)
		return
	}
	m.Options[a.pos[1]] = a.pos[2]
}

func removeString(list []string, v string) []string {
	out := list[:0]
	for _, s := range list {
		if s != v {
			out = append(out, s)
		}
	}
	return out
}

func appendUnique(list []string, v string) []string {
	for _, s := range list {
		if s == v {
			return list
		}
	}
	return append(list, v)
}

func (s *Server) externalApplicable(out *output, a args) {
	m := s.findMount(out, a)
	if m == nil {
		return
	}
	for _, u := range a.flags["add-user"] {
		if _, ok := s.opts.Users[u]; !ok {
			out.exception(invalidArgument, "User %s not found", u)
			return
		}
		m.Users = appendUnique(m.Users, u)
	}
	for _, u := range a.flags["remove-user"] {
		m.Users = removeString(m.Users, u)
	}
	for _, g := range a.flags["add-group"] {
		if _, ok := s.opts.Groups[g]; !ok {
			out.exception(invalidArgument, "Group %s not found", g)
			return
		}
		m.Groups = appendUnique(m.Groups, g)
	}
	for _, g := range a.flags["remove-group"] {
		m.Groups = removeString(m.Groups, g)
	}
	b, _ := json.Marshal(map[string][]string{"users": append([]string{}, m.Users...), "groups": append([]string{}, m.Groups...)})
	out.stdout.Write(b)
	out.stdout.WriteByte('\n')
}

func (s *Server) externalDelete(out *output, a args) {
	m := s.findMount(out, a)
	if m == nil {
		return
	}
	if !a.has("yes") {
		out.stderr.WriteString("Delete cancelled, pass --yes to confirm\n")
		out.code = 1
		return
	}
	for i, x := range s.mounts {
		if x == m {
			s.mounts = append(s.mounts[:i], s.mounts[i+1:]...)
			break
		}
	}
	out.println("Mount with id %d deleted", m.ID)
}

func (s *Server) certificatesList(out *output) {
	rows := make([][]string, 0, len(s.certificates))
	for _, c := range s.certificates {
		rows = append(rows, []string{c, "ownCloud", "2030-01-01"})
	}
	out.stdout.WriteString(renderTable([]string{"File Name", "Common Name", "Expire"}, rows))
}

func (s *Server) certificateImport(out *output, a args) {
	if len(a.pos) == 0 {
		out.exception(runtimeException, `Not enough arguments (missing: "path").`)
		return
	}
	name := path.Base(a.pos[0])
	ext := path.Ext(name)
	if (ext != ".crt" && ext != ".pem") || strings.Contains(strings.ToLower(name), "invalid") {
		out.exception("Exception", "Certificate could not get parsed.")
		return
	}
	s.certificates = appendUnique(s.certificates, name)
}

func (s *Server) certificateRemove(out *output, a args) {
	if len(a.pos) == 0 {
		out.exception(runtimeException, `Not enough arguments (missing: "name").`)
		return
	}
	for _, c := range s.certificates {
		if c == a.pos[0] {
			s.certificates = removeString(s.certificates, c)
			return
		}
	}
	out.stderr.WriteString("Certificate " + a.pos[0] + " not found\n")
	out.code = 1
}

var logLevels = []string{"Debug", "Info", "Warning", "Error", "Fatal"}

func parseLogLevel(v string) (int, bool) {
	if n, err := strconv.Atoi(v); err == nil && n >= 0 && n < len(logLevels) {
		return n, true
	}
	for i, name := range logLevels {
		if strings.EqualFold(name, v) || (i == 2 && strings.EqualFold(v, "warn")) {
			return i, true
		}
	}
	return 0, false
}

func (s *Server) systemString(key, fallback string) string {
	if v, ok := s.system[key]; ok {
		return v.Raw
	}
	return fallback
}

func (s *Server) logManage(out *output, a args) {
	if a.has("backend") {
		backend := a.flag("backend")
		switch backend {
		case "owncloud", "syslog", "errorlog":
		default:
			out.exception(invalidArgument, "Invalid backend")
			return
		}
		s.system["log_type"] = configValue{Type: "string", Raw: backend}
	}
	if a.has("level") {
		level, ok := parseLogLevel(a.flag("level"))
		if !ok {
			out.exception(invalidArgument, "Invalid log level")
			return
		}
		s.system["loglevel"] = configValue{Type: "integer", Raw: strconv.Itoa(level)}
	}
	if a.has("timezone") {
		s.system["logtimezone"] = configValue{Type: "string", Raw: a.flag("timezone")}
	}
	level, _ := strconv.Atoi(s.systemString("loglevel", "2"))
	if level < 0 || level >= len(logLevels) {
		level = 2
	}
	out.println("Enabled logging backend: %s", s.systemString("log_type", "owncloud"))
	out.println("Log level: %s (%d)", logLevels[level], level)
	out.println("Log timezone: %s", s.systemString("logtimezone", "UTC"))
}

func (s *Server) logOwncloud(out *output, a args) {
	if a.has("enable") {
		s.system["log_type"] = configValue{Type: "string", Raw: "owncloud"}
	}
	if a.has("file") {
		s.system["logfile"] = configValue{Type: "string", Raw: a.flag("file")}
	}
	if a.has("rotate-size") {
		size, ok := parseSize(a.flag("rotate-size"))
		if !ok {
			out.exception(invalidArgument, "Error parsing log rotation file size")
			return
		}
		s.system["log_rotate_size"] = configValue{Type: "integer", Raw: strconv.FormatInt(size, 10)}
	}
	enabled := "disabled"
	if s.systemString("log_type", "owncloud") == "owncloud" {
		enabled = "enabled"
	}
	out.println("Log backend ownCloud: %s", enabled)
	out.println("Log file: %s", s.systemString("logfile", s.systemString("datadirectory", "")+"/owncloud.log"))
	if size := s.systemString("log_rotate_size", "0"); size != "0" {
		out.println("Rotate at: %s", size)
	} else {
		out.println("Log Rotation is disabled")
	}
}

func parseSize(v string) (int64, bool) {
	v = strings.TrimSpace(strings.ToUpper(v))
	mult := int64(1)
	for suffix, m := range map[string]int64{"KB": 1 << 10, "MB": 1 << 20, "GB": 1 << 30, "K": 1 << 10, "M": 1 << 20, "G": 1 << 30, "B": 1} {
		if strings.HasSuffix(v, suffix) {
			n, err := strconv.ParseFloat(strings.TrimSpace(strings.TrimSuffix(v, suffix)), 64)
			if err != nil {
				continue
			}
			return int64(n * float64(m)), true
		}
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return 0, false
	}
	return n * mult, true
}

func (s *Server) maintenanceMode(out *output, a args) {
	switch {
	case a.has("on"):
		s.maintenance = true
		out.println("Maintenance mode enabled")
	case a.has("off"):
		s.maintenance = false
		out.println("Maintenance mode disabled")
	case s.maintenance:
		out.println("Maintenance mode is currently enabled")
	default:
		out.println("Maintenance mode is currently disabled")
	}
}

func (s *Server) upgrade(out *output) {
	if s.opts.UpgradeExitCode != 0 {
		s.maintenance = true
		out.println("Turned on maintenance mode")
		out.stderr.WriteString("Exception: Updates between multiple major versions are unsupported.\n")
		out.code = s.opts.UpgradeExitCode
		return
	}
	out.println("ownCloud is already latest version")
}
