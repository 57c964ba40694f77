package reconcile

import (
	"context"
	"strings"

	pterrors "github.com/podtend/podtend/pkg/errors"
)

// containerHandler implements the container pipeline: the largest
// option table, image-aware defaults and the full lifecycle
// (present/started/stopped/absent).
type containerHandler struct{}

func (containerHandler) allowedStates() []State {
	return []State{StatePresent, StateStarted, StateStopped, StateAbsent}
}

func (containerHandler) running(st ProbedState) bool {
	running, _ := st.Bool("state", "running")
	return running
}

func (containerHandler) registry() *Registry {
	return containerRegistry
}

var containerRegistry = NewRegistry(
	OptionDef{Name: "image", Compare: Exact(), Normalize: normalizeString, BeforeAfter: diffContainerImage},
	OptionDef{Name: "image_strict", Normalize: normalizeBool},
	OptionDef{Name: "command", Compare: Caseless(), Normalize: normalizeCommand,
		Probe: probeStrings("config", "cmd")},
	OptionDef{Name: "env", Flag: "--env", Compare: Exact(), Normalize: normalizeMap,
		BeforeAfter: additiveMap(probePairList("=", "config", "env"))},
	OptionDef{Name: "env_file", Flag: "--env-file", Compare: Exact(), Normalize: normalizeList,
		AlwaysChanged: true},
	OptionDef{Name: "env_host", Flag: "--env-host", Compare: Exact(), Normalize: normalizeBool,
		AlwaysChanged: true},
	OptionDef{Name: "label", Flag: "--label", Compare: Caseless(), Normalize: normalizeMap,
		BeforeAfter: diffContainerLabel},
	OptionDef{Name: "annotation", Flag: "--annotation", Compare: Exact(), Normalize: normalizeMap,
		BeforeAfter: additiveMap(probeStrMap("config", "annotations"))},
	OptionDef{Name: "publish", Flag: "--publish", Compare: Semantic(canonPublish),
		Normalize: normalizeList, BeforeAfter: diffContainerPublish},
	OptionDef{Name: "volume", Flag: "--volume", Compare: Semantic(canonVolume),
		Normalize: normalizeList, BeforeAfter: diffContainerVolume},
	OptionDef{Name: "device", Flag: "--device", Compare: Semantic(canonDevice),
		Normalize: normalizeList, Default: staticDefault(ListValue()), Probe: probeDevices},
	OptionDef{Name: "cap_add", Flag: "--cap-add", Compare: Semantic(canonCap),
		Normalize: normalizeList, BeforeAfter: diffContainerCapAdd},
	OptionDef{Name: "cap_drop", Flag: "--cap-drop", Compare: Semantic(canonCap),
		Normalize: normalizeList, BeforeAfter: diffContainerCapDrop},
	OptionDef{Name: "memory", Flag: "--memory", Compare: Exact(), Normalize: normalizeSize,
		Default: staticDefault(IntValue(0)), Probe: probeInt("hostconfig", "memory"), LiveUpdate: true},
	OptionDef{Name: "memory_reservation", Flag: "--memory-reservation", Compare: Exact(),
		Normalize: normalizeSize, Default: staticDefault(IntValue(0)),
		Probe: probeInt("hostconfig", "memoryreservation"), LiveUpdate: true},
	OptionDef{Name: "memory_swap", Flag: "--memory-swap", Compare: Exact(), Normalize: normalizeSize,
		Default: memorySwapDefault, Probe: probeInt("hostconfig", "memoryswap"), LiveUpdate: true},
	OptionDef{Name: "shm_size", Flag: "--shm-size", Compare: Exact(), Normalize: normalizeSize,
		Default: staticDefault(IntValue(64 * 1024 * 1024)), Probe: probeInt("hostconfig", "shmsize")},
	OptionDef{Name: "cpus", Flag: "--cpus", Compare: Exact(), Normalize: normalizeFloat,
		Default: staticDefault(FloatValue(0)), Probe: probeNanoCPUs, LiveUpdate: true},
	OptionDef{Name: "cpu_shares", Flag: "--cpu-shares", Compare: Exact(), Normalize: normalizeInt,
		Default: staticDefault(IntValue(0)), Probe: probeInt("hostconfig", "cpushares"), LiveUpdate: true},
	OptionDef{Name: "cpuset_cpus", Flag: "--cpuset-cpus", Compare: Exact(), Normalize: normalizeString,
		Default: staticDefault(StringValue("")), Probe: probeString("hostconfig", "cpusetcpus"), LiveUpdate: true},
	OptionDef{Name: "cpuset_mems", Flag: "--cpuset-mems", Compare: Exact(), Normalize: normalizeString,
		Default: staticDefault(StringValue("")), Probe: probeString("hostconfig", "cpusetmems"), LiveUpdate: true},
	OptionDef{Name: "pids_limit", Flag: "--pids-limit", Compare: Exact(), Normalize: normalizeInt,
		Probe: probeInt("hostconfig", "pidslimit"), LiveUpdate: true},
	OptionDef{Name: "user", Flag: "--user", Compare: Exact(), Normalize: normalizeString,
		Default: imageUserDefault, Probe: probeString("config", "user")},
	OptionDef{Name: "workdir", Flag: "--workdir", Compare: Exact(), Normalize: normalizeString,
		Default: imageWorkdirDefault, Probe: probeString("config", "workingdir")},
	OptionDef{Name: "hostname", Flag: "--hostname", Compare: Exact(), Normalize: normalizeString,
		BeforeAfter: declaredOrCurrent(probeString("config", "hostname"))},
	OptionDef{Name: "ip", Flag: "--ip", Compare: Exact(), Normalize: normalizeString,
		BeforeAfter: declaredOrCurrent(probeString("networksettings", "ipaddress"))},
	OptionDef{Name: "mac_address", Flag: "--mac-address", Compare: Caseless(), Normalize: normalizeString,
		BeforeAfter: declaredOrCurrent(probeString("networksettings", "macaddress"))},
	OptionDef{Name: "healthcheck", Flag: "--healthcheck-command", Compare: Exact(),
		Normalize: normalizeString, BeforeAfter: declaredOrCurrent(probeHealthcheck)},
	OptionDef{Name: "privileged", Flag: "--privileged", Compare: Exact(), Normalize: normalizeBool,
		Default: staticDefault(BoolValue(false)), Probe: probeBool("hostconfig", "privileged")},
	OptionDef{Name: "read_only", Flag: "--read-only", Compare: Exact(), Normalize: normalizeBool,
		Default: staticDefault(BoolValue(false)), Probe: probeBool("hostconfig", "readonlyrootfs")},
	OptionDef{Name: "init", Flag: "--init", Compare: Exact(), Normalize: normalizeBool,
		Default: staticDefault(BoolValue(false)), Probe: probeBool("hostconfig", "init")},
	OptionDef{Name: "rm", Flag: "--rm", Compare: Exact(), Normalize: normalizeBool,
		Default: staticDefault(BoolValue(false)), Probe: probeBool("hostconfig", "autoremove")},
	OptionDef{Name: "tty", Flag: "--tty", Compare: Exact(), Normalize: normalizeBool,
		Default: staticDefault(BoolValue(false)), Probe: probeBool("config", "tty")},
	OptionDef{Name: "interactive", Flag: "--interactive", Compare: Exact(), Normalize: normalizeBool,
		Default: staticDefault(BoolValue(false)), Probe: probeBool("config", "openstdin")},
	OptionDef{Name: "restart_policy", Flag: "--restart", Compare: Exact(), Normalize: normalizeString,
		Probe: probeString("hostconfig", "restartpolicy", "name"), LiveUpdate: true},
	OptionDef{Name: "stop_signal", Flag: "--stop-signal", Compare: Semantic(canonSignal),
		Normalize: normalizeString, Default: imageStopSignalDefault, Probe: probeSignal},
	OptionDef{Name: "stop_timeout", Flag: "--stop-timeout", Compare: Exact(), Normalize: normalizeInt,
		Probe: probeInt("config", "stoptimeout")},
	OptionDef{Name: "log_driver", Flag: "--log-driver", Compare: Exact(), Normalize: normalizeString,
		Default: staticDefault(StringValue("k8s-file")), Probe: probeString("hostconfig", "logconfig", "type")},
	OptionDef{Name: "log_opt", Flag: "--log-opt", Compare: Exact(), Normalize: normalizeLogOpt,
		BeforeAfter: diffContainerLogOpt},
	OptionDef{Name: "network", Flag: "--network", Compare: Set(), Normalize: normalizeList,
		BeforeAfter: diffContainerNetwork},
	OptionDef{Name: "dns", Flag: "--dns", Compare: Set(), Normalize: normalizeList,
		Default: staticDefault(ListValue()), Probe: probeStrings("hostconfig", "dns")},
	OptionDef{Name: "dns_option", Flag: "--dns-option", Compare: Set(), Normalize: normalizeList,
		Default: staticDefault(ListValue()), Probe: probeStrings("hostconfig", "dnsoptions")},
	OptionDef{Name: "dns_search", Flag: "--dns-search", Compare: Set(), Normalize: normalizeList,
		Default: staticDefault(ListValue()), Probe: probeStrings("hostconfig", "dnssearch")},
	OptionDef{Name: "etc_hosts", Flag: "--add-host", MapSep: ":", Compare: Exact(),
		Normalize: normalizeMap, Default: staticDefault(MapValue(nil)),
		Probe: probePairList(":", "hostconfig", "extrahosts")},
	OptionDef{Name: "group_add", Flag: "--group-add", Compare: Set(), Normalize: normalizeList,
		Default: staticDefault(ListValue()), Probe: probeStrings("hostconfig", "groupadd")},
	OptionDef{Name: "security_opt", Flag: "--security-opt", Compare: Set(), Normalize: normalizeList,
		Default: staticDefault(ListValue()), Probe: probeSecurityOpt},
	OptionDef{Name: "ulimit", Flag: "--ulimit", Compare: Set(), Normalize: normalizeList,
		Default: staticDefault(ListValue()), Probe: probeUlimits},
	OptionDef{Name: "oom_score_adj", Flag: "--oom-score-adj", Compare: Exact(), Normalize: normalizeInt,
		Default: staticDefault(IntValue(0)), Probe: probeInt("hostconfig", "oomscoreadj")},
	OptionDef{Name: "pid", Flag: "--pid", Compare: Exact(), Normalize: normalizeString,
		Default: namespaceDefault, Probe: probeString("hostconfig", "pidmode")},
	OptionDef{Name: "ipc", Flag: "--ipc", Compare: Exact(), Normalize: normalizeString,
		Default: namespaceDefault, Probe: probeString("hostconfig", "ipcmode")},
	OptionDef{Name: "uts", Flag: "--uts", Compare: Exact(), Normalize: normalizeString,
		Default: namespaceDefault, Probe: probeString("hostconfig", "utsmode")},
	OptionDef{Name: "pod", Flag: "--pod", Normalize: normalizeString},
)

// normalizeCommand splits string shorthand into argv; list input is
// order-sensitive and preserved as given.
func normalizeCommand(key string, v Value) (Value, error) {
	if v.Kind() == ValString {
		return ListValue(strings.Fields(v.String())...), nil
	}
	return normalizeList(key, v)
}

// Default functions consulting version or image context.

func namespaceDefault(d Defaults) (Value, bool) {
	if d.VersionAtLeast(2) {
		return StringValue("private"), true
	}
	return StringValue(""), true
}

func memorySwapDefault(d Defaults) (Value, bool) {
	if v, ok := d.Extra["memory_swap"]; ok {
		return v, true
	}
	return IntValue(0), true
}

func imageUserDefault(d Defaults) (Value, bool) {
	if user, ok := d.Image.Str("config", "user"); ok {
		return StringValue(user), true
	}
	if user, ok := d.Image.Str("user"); ok {
		return StringValue(user), true
	}
	return StringValue(""), true
}

func imageWorkdirDefault(d Defaults) (Value, bool) {
	if wd, ok := d.Image.Str("config", "workingdir"); ok && wd != "" {
		return StringValue(wd), true
	}
	return StringValue("/"), true
}

func imageStopSignalDefault(d Defaults) (Value, bool) {
	if sig, ok := d.Image.Str("config", "stopsignal"); ok && sig != "" {
		return StringValue(sig), true
	}
	return StringValue("15"), true
}

// Probe functions for fields needing more than a path lookup.

func probeNanoCPUs(st ProbedState) (Value, bool) {
	nano, ok := st.Int("hostconfig", "nanocpus")
	if !ok {
		return Value{}, false
	}
	return FloatValue(float64(nano) / 1e9), true
}

func probeSignal(st ProbedState) (Value, bool) {
	if s, ok := st.Str("config", "stopsignal"); ok {
		return StringValue(s), true
	}
	if i, ok := st.Int("config", "stopsignal"); ok {
		return StringValue(IntValue(i).String()), true
	}
	return Value{}, false
}

func probeDevices(st ProbedState) (Value, bool) {
	devices, ok := st.Objects("hostconfig", "devices")
	if !ok {
		return Value{}, false
	}
	items := make([]string, 0, len(devices))
	for _, dev := range devices {
		host, _ := dev["pathonhost"].(string)
		container, _ := dev["pathincontainer"].(string)
		items = append(items, host+":"+container)
	}
	return ListValue(items...), true
}

// probeSecurityOpt drops the implicit apparmor default rootful podman
// injects, which is not something the user declared.
func probeSecurityOpt(st ProbedState) (Value, bool) {
	opts, ok := st.Strings("hostconfig", "securityopt")
	if !ok {
		return Value{}, false
	}
	filtered := make([]string, 0, len(opts))
	for _, opt := range opts {
		if strings.Contains(opt, "apparmor=containers-default") {
			continue
		}
		filtered = append(filtered, opt)
	}
	return ListValue(filtered...), true
}

// probeUlimits recovers declared ulimits from the recorded create
// command; the hostconfig view rewrites names and loses the original
// spellings.
func probeUlimits(st ProbedState) (Value, bool) {
	argv, ok := st.Strings("config", "createcommand")
	if !ok {
		return Value{}, false
	}
	var ulimits []string
	for i, arg := range argv {
		if arg == "--ulimit" && i+1 < len(argv) {
			ulimits = append(ulimits, argv[i+1])
		}
	}
	return ListValue(ulimits...), true
}

func probeHealthcheck(st ProbedState) (Value, bool) {
	test, ok := st.Strings("config", "healthcheck", "test")
	if !ok || len(test) < 2 {
		return StringValue(""), true
	}
	return StringValue(test[1]), true
}

// declaredOrCurrent builds a partial-idempotency comparison: when the
// option is not declared, the current value wins (random hostnames,
// assigned addresses). Skips entirely when neither side has a value.
func declaredOrCurrent(probe ProbeFunc) BeforeAfterFunc {
	return func(st ProbedState, declared Value, declaredSet bool, _ Defaults) (Value, Value, bool) {
		before, ok := probe(st)
		if !ok {
			before = StringValue("")
		}
		if !declaredSet {
			return before, before, true
		}
		return before, declared, true
	}
}

// Bespoke before/after constructions mirroring inspect's shapes.

func diffContainerImage(st ProbedState, declared Value, declaredSet bool, d Defaults) (Value, Value, bool) {
	if !declaredSet {
		return Value{}, Value{}, false
	}
	beforeID, _ := st.Str("image")
	afterID, hasID := d.Image.Str("id")
	if hasID && beforeID == afterID {
		return StringValue(beforeID), StringValue(afterID), true
	}
	if d.StrictImage {
		return StringValue(beforeID), StringValue(afterID), true
	}
	beforeName, _ := st.Str("config", "image")
	return StringValue(canonImageLite(beforeName)), StringValue(canonImageLite(declared.String())), true
}

func diffContainerLabel(st ProbedState, declared Value, declaredSet bool, d Defaults) (Value, Value, bool) {
	if !declaredSet {
		return Value{}, Value{}, false
	}
	before, ok := probeStrMap("config", "labels")(st)
	if !ok {
		before = MapValue(nil)
	}
	after, _ := d.Image.StrMap("labels")
	if after == nil {
		after = map[string]string{}
	}
	for k, v := range declared.Map() {
		after[k] = v
	}
	return before, MapValue(after), true
}

func diffContainerPublish(st ProbedState, declared Value, declaredSet bool, _ Defaults) (Value, Value, bool) {
	after := declared.List()
	for _, port := range after {
		// Port ranges cannot be matched against inspect output yet;
		// skip the comparison rather than report a bogus change.
		if strings.Contains(port, "-") {
			return Value{}, Value{}, false
		}
	}

	before := probedPortBindings(st, "hostconfig", "portbindings")
	return ListValue(before...), ListValue(after...), true
}

// probedPortBindings flattens inspect's port binding map into the
// "hostip:hostport:port" strings the publish option declares.
func probedPortBindings(st ProbedState, path ...string) []string {
	bindings, ok := st.Lookup(path...)
	if !ok {
		return nil
	}
	byPort, ok := bindings.(map[string]any)
	if !ok {
		return nil
	}
	var mapped []string
	for port, entries := range byPort {
		list, ok := entries.([]any)
		if !ok || len(list) == 0 {
			continue
		}
		first, ok := list[0].(map[string]any)
		if !ok {
			continue
		}
		hostIP, _ := first["hostip"].(string)
		hostPort := scalarOrEmpty(first["hostport"])
		joined := strings.Trim(strings.Join([]string{hostIP, hostPort, strings.TrimSuffix(port, "/tcp")}, ":"), ":")
		mapped = append(mapped, joined)
	}
	return mapped
}

func diffContainerVolume(st ProbedState, declared Value, declaredSet bool, _ Defaults) (Value, Value, bool) {
	var binds, named []string
	if mounts, ok := st.Objects("mounts"); ok {
		for _, mount := range mounts {
			dst, _ := mount["destination"].(string)
			if typ, _ := mount["type"].(string); typ == "volume" {
				name, _ := mount["name"].(string)
				named = append(named, canonVolume(name+":"+dst))
				continue
			}
			src, _ := mount["source"].(string)
			binds = append(binds, src+":"+dst)
		}
	}

	after := make([]string, 0, len(declared.List()))
	for _, v := range declared.List() {
		canon := canonVolume(v)
		// Named volumes that are already mounted carry no bind source
		// in inspect; exclude them instead of reporting drift.
		if containsString(named, canon) {
			continue
		}
		after = append(after, canon)
	}
	return ListValue(binds...), ListValue(after...), true
}

func diffContainerCapAdd(st ProbedState, declared Value, declaredSet bool, _ Defaults) (Value, Value, bool) {
	if !declaredSet {
		return Value{}, Value{}, false
	}
	caps, _ := st.Strings("effectivecaps")
	after := append([]string(nil), caps...)
	for _, c := range declared.List() {
		after = append(after, canonCap(c))
	}
	return ListValue(caps...), ListValue(after...), true
}

func diffContainerCapDrop(st ProbedState, declared Value, declaredSet bool, _ Defaults) (Value, Value, bool) {
	if !declaredSet {
		return Value{}, Value{}, false
	}
	caps, _ := st.Strings("effectivecaps")
	dropped := map[string]bool{}
	for _, c := range declared.List() {
		dropped[canonCap(c)] = true
	}
	var after []string
	for _, c := range caps {
		if !dropped[canonCap(c)] {
			after = append(after, c)
		}
	}
	return ListValue(caps...), ListValue(after...), true
}

// diffContainerLogOpt compares only the declared sub-keys; the log path
// default is runtime-assigned and cannot be guessed.
func diffContainerLogOpt(st ProbedState, declared Value, declaredSet bool, _ Defaults) (Value, Value, bool) {
	if !declaredSet {
		return Value{}, Value{}, false
	}
	opts := declared.Map()
	before := map[string]string{}
	after := map[string]string{}

	if path, ok := opts["path"]; ok {
		current, _ := st.Str("logpath")
		before["path"] = current
		after["path"] = path
	}
	if tag, ok := opts["tag"]; ok {
		current, _ := st.Str("logtag")
		before["tag"] = current
		after["tag"] = tag
	}
	if size, ok := opts["max-size"]; ok {
		if current, found := st.Int("hostconfig", "logconfig", "size"); found {
			before["max-size"] = IntValue(current).String()
			after["max-size"] = size
		}
	}
	return MapValue(before), MapValue(after), true
}

// diffContainerNetwork folds the bridge/slirp4netns network modes to
// one canonical "default" so version differences do not force
// recreation.
func diffContainerNetwork(st ProbedState, declared Value, declaredSet bool, d Defaults) (Value, Value, bool) {
	var before []string
	if networks, ok := st.Lookup("networksettings", "networks"); ok {
		if byName, ok := networks.(map[string]any); ok {
			for name := range byName {
				before = append(before, name)
			}
		}
	}

	after := declared.List()
	if !declaredSet {
		if d.VersionAtLeast(2) {
			after = []string{"slirp4netns"}
		} else {
			after = nil
		}
	}

	if len(after) == 1 && len(before) == 0 {
		switch after[0] {
		case "bridge", "host", "slirp4netns", "none":
			modeBefore, _ := st.Str("hostconfig", "networkmode")
			return StringValue(foldNetworkMode(modeBefore)), StringValue(foldNetworkMode(after[0])), true
		}
	}
	return ListValue(before...), ListValue(after...), true
}

func foldNetworkMode(mode string) string {
	switch mode {
	case "bridge", "slirp4netns":
		return "default"
	}
	return mode
}

func scalarOrEmpty(v any) string {
	s, _ := scalarString(v)
	return s
}

func containsString(items []string, s string) bool {
	for _, item := range items {
		if item == s {
			return true
		}
	}
	return false
}

func (containerHandler) defaults(ctx context.Context, e *Engine, spec ResourceSpec) (Defaults, error) {
	d := Defaults{Version: e.toolVersion(ctx), Extra: map[string]Value{}}

	if raw, ok := spec.Options["image"]; ok {
		if image, isStr := raw.(string); isStr && image != "" {
			record, err := e.prober.Inspect(ctx, "image", image)
			if err != nil && !pterrors.IsNotFound(err) {
				return d, err
			}
			d.Image = NewProbedState(record)
		}
	}

	if raw, ok := spec.Options["image_strict"]; ok {
		if strict, isBool := raw.(bool); isBool {
			d.StrictImage = strict
		}
	}

	// memory_swap defaults to twice the declared memory limit.
	if _, swapSet := spec.Options["memory_swap"]; !swapSet {
		if rawMem, ok := spec.Options["memory"]; ok {
			if mem, err := FromAny("memory", rawMem); err == nil {
				if normalized, err := normalizeSize("memory", mem); err == nil && normalized.Int() > 0 {
					d.Extra["memory_swap"] = IntValue(normalized.Int() * 2)
				}
			}
		}
	}

	return d, nil
}

func (h containerHandler) plan(ctx context.Context, e *Engine, ev *Evaluation) (*CommandPlan, error) {
	plan := &CommandPlan{}
	name := ev.Spec.Name

	if ev.Spec.State == StateAbsent {
		if ev.Current.Exists() {
			plan.add("delete container "+name, "container", "rm", "-f", name)
		}
		return plan, nil
	}

	image := ev.Desired["image"].String()
	if image == "" && !ev.Current.Exists() {
		return nil, pterrors.NewValidationError("image", "cannot create a container without an image", nil)
	}
	if image != "" {
		present, err := e.prober.ImageExists(ctx, image)
		if err != nil {
			return nil, err
		}
		if !present {
			plan.add("pull image "+image, "image", "pull", image)
		}
	}

	exists := ev.Current.Exists()
	changed := ev.Diff.Changed
	wantRunning := ev.Spec.State == StatePresent || ev.Spec.State == StateStarted

	switch {
	case !exists:
		if wantRunning {
			plan.add("create and start container "+name, h.runArgs(ev, true)...)
		} else {
			plan.add("create container "+name, h.runArgs(ev, false)...)
		}
	case changed:
		if ops, ok := h.liveUpdateOps(ev); ok {
			plan.Ops = append(plan.Ops, ops...)
			if wantRunning && !ev.IsRunning {
				plan.add("start container "+name, "container", "start", name)
			} else if !wantRunning && ev.IsRunning {
				plan.add("stop container "+name, "container", "stop", name)
			}
			break
		}
		if ev.IsRunning {
			plan.add("stop container "+name, "container", "stop", name)
		}
		plan.add("remove container "+name, "container", "rm", "-f", name)
		if wantRunning {
			plan.add("recreate container "+name, h.runArgs(ev, true)...)
		} else {
			plan.add("recreate container "+name, h.runArgs(ev, false)...)
		}
	case wantRunning && !ev.IsRunning:
		plan.add("start container "+name, "container", "start", name)
	case !wantRunning && ev.IsRunning:
		plan.add("stop container "+name, "container", "stop", name)
	}

	return plan, nil
}

// liveUpdateOps builds an in-place update when every changed option
// supports it; recreation stays the fallback for everything else.
func (containerHandler) liveUpdateOps(ev *Evaluation) ([]Op, bool) {
	args := []string{"container", "update"}
	for changedKey := range ev.Diff.After {
		def, ok := containerRegistry.Lookup(changedKey)
		if !ok || !def.LiveUpdate || def.Flag == "" {
			return nil, false
		}
		value, ok := ev.Desired[changedKey]
		if !ok {
			return nil, false
		}
		args = append(args, renderFlag(def, value)...)
	}
	args = append(args, ev.Spec.Name)
	return []Op{{Args: args, Desc: "update container " + ev.Spec.Name}}, true
}

// runArgs renders `container run -d`/`container create` with flags in
// registry order, then image and command positionally.
func (containerHandler) runArgs(ev *Evaluation, start bool) []string {
	args := []string{"container"}
	if start {
		args = append(args, "run", "-d")
	} else {
		args = append(args, "create")
	}
	args = append(args, "--name", ev.Spec.Name)
	args = append(args, flagArgs(containerRegistry, ev.Desired)...)
	args = append(args, ev.Desired["image"].String())
	if command, ok := ev.Desired["command"]; ok {
		args = append(args, command.List()...)
	}
	return args
}
