// Copyright © 2026 VE Project contributors.
// Use is governed by a BSD-style license found in the LICENSE file.

// Package ve wires together the clock, device pipeline, BlueScript
// interpreter, script-to-VE glue, and motion gate into one runtime, and
// implements the process-wide environment/CLI/config surface of spec
// §6: Init strips the recognized -ve_* flags, Config carries the
// VEROOT/VEENV/VEUSER/... values they (or their environment-variable
// equivalents) set, and the manifest loaders populate the declarative
// device/driver tables both BlueScript and YAML manifests describe.
package ve

import "os"

// Config holds the environment-variable/command-line settings spec §6
// lists: VEROOT, VEENV, VEUSER, VEDEBUG, VEMANIFEST, VEDEVICES.
type Config struct {
	VERoot     string
	VEEnv      string
	VEUser     string
	VEDebug    string
	VEManifest string
	VEDevices  string
}

// configFromEnv seeds a Config from the environment variables spec §6
// names; Init then lets command-line flags override them.
func configFromEnv() *Config {
	return &Config{
		VERoot:     os.Getenv("VEROOT"),
		VEEnv:      os.Getenv("VEENV"),
		VEUser:     os.Getenv("VEUSER"),
		VEDebug:    os.Getenv("VEDEBUG"),
		VEManifest: os.Getenv("VEMANIFEST"),
		VEDevices:  os.Getenv("VEDEVICES"),
	}
}

// flagTargets maps each recognized -ve_* flag to the Config field it
// overrides (spec §6 "Command-line (recognized by init(argv) then
// removed): -ve_env, -ve_user, -ve_debug, -ve_manifest, -ve_devices,
// -ve_root").
func (c *Config) flagTargets() map[string]*string {
	return map[string]*string{
		"-ve_root":     &c.VERoot,
		"-ve_env":      &c.VEEnv,
		"-ve_user":     &c.VEUser,
		"-ve_debug":    &c.VEDebug,
		"-ve_manifest": &c.VEManifest,
		"-ve_devices":  &c.VEDevices,
	}
}

// Init seeds a Config from the environment, then consumes argv's
// recognized -ve_* flags (each followed by one value), overriding the
// matching field. Parsing stops at the first unrecognized argument or
// at "--", per spec §6; everything from that point on (the "--"
// separator itself is consumed, an unrecognized flag is not) is
// returned as the application's own argument list.
func Init(argv []string) (*Config, []string) {
	cfg := configFromEnv()
	targets := cfg.flagTargets()

	i := 0
	for i < len(argv) {
		arg := argv[i]
		if arg == "--" {
			i++
			break
		}
		target, ok := targets[arg]
		if !ok || i+1 >= len(argv) {
			break
		}
		*target = argv[i+1]
		i += 2
	}
	return cfg, argv[i:]
}
