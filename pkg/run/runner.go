/*
   IECDrive - Commodore 1541 drive emulator
   Copyright (c) 2022, Alexander Vollschwitz

   This file is part of IECDrive.

   IECDrive is free software: you can redistribute it and/or modify
   it under the terms of the GNU General Public License as published by
   the Free Software Foundation, either version 3 of the License, or
   (at your option) any later version.

   IECDrive is distributed in the hope that it will be useful,
   but WITHOUT ANY WARRANTY; without even the implied warranty of
   MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
   GNU General Public License for more details.

   You should have received a copy of the GNU General Public License
   along with IECDrive. If not, see <http://www.gnu.org/licenses/>.
*/

/*
	Package run holds the command line runners. Each runner is a cobra
	command with its settings bound to flags, environment variables prefixed
	with IECDRIVE_, and optionally a config file.
*/
package run

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

//
const (
	EnvPrefix      = "IECDRIVE"
	DefaultAddress = "localhost:8888"
	apiTimeout     = 30 * time.Second
)

var runnerHelpEpilogue = `- Settings can also be made via environment variables. The variable name is
  the setting's long name in upper case, with - and . replaced by _, prefixed
  with IECDRIVE_, e.g. IECDRIVE_ADDRESS.

`

//
type setting struct {
	name     string
	target   interface{}
	flag     *pflag.Flag
	required bool
}

/*
	Runner is the base of all commands. Embedding runners register their
	settings with AddSetting, and call ParseSettings at the start of Run.
*/
type Runner struct {
	cobra.Command
	//
	Address  string
	LogLevel string
	//
	viper    *viper.Viper
	settings []*setting
	out      io.Writer
}

//
func NewRunner(use, short, long, example, epilogue string,
	exec func() error) *Runner {

	r := &Runner{
		Command: cobra.Command{
			Use:          use,
			Short:        short,
			Long:         long + "\n\n" + epilogue,
			Example:      example,
			SilenceUsage: true,
		},
		viper: viper.New(),
		out:   os.Stdout,
	}

	r.RunE = func(cmd *cobra.Command, args []string) error {
		return exec()
	}

	r.viper.SetEnvPrefix(EnvPrefix)
	r.viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	r.viper.AutomaticEnv()

	return r
}

// AddBaseSettings adds the settings every runner has.
func (r *Runner) AddBaseSettings() {
	r.AddSetting(&r.Address, "address", "a", "", DefaultAddress,
		"address of the daemon's API", false)
	r.AddSetting(&r.LogLevel, "log-level", "", "", "info",
		"log level: trace, debug, info, warn, error", false)
}

/*
	AddSetting adds a setting backed by a flag. target points to where the
	value goes, and its type determines the flag type. If env is not empty,
	it names an additional environment variable for this setting.
*/
func (r *Runner) AddSetting(target interface{}, name, short, env string,
	def interface{}, usage string, required bool) {

	f := r.Flags()

	switch t := target.(type) {
	case *string:
		d, _ := def.(string)
		f.StringVarP(t, name, short, d, usage)
	case *int:
		d, _ := def.(int)
		f.IntVarP(t, name, short, d, usage)
	case *bool:
		d, _ := def.(bool)
		f.BoolVarP(t, name, short, d, usage)
	case *time.Duration:
		d, _ := def.(time.Duration)
		f.DurationVarP(t, name, short, d, usage)
	default:
		panic(fmt.Sprintf("unsupported setting type for %s: %T", name, target))
	}

	flag := f.Lookup(name)
	if err := r.viper.BindPFlag(name, flag); err != nil {
		panic(fmt.Sprintf("cannot bind setting %s: %v", name, err))
	}
	if env != "" {
		if err := r.viper.BindEnv(name, env); err != nil {
			panic(fmt.Sprintf("cannot bind %s to %s: %v", name, env, err))
		}
	}

	r.settings = append(r.settings,
		&setting{name: name, target: target, flag: flag, required: required})
}

// ReadConfig reads settings from file. Flags and environment take
// precedence over the file.
func (r *Runner) ReadConfig(file string) error {
	if file == "" {
		return nil
	}
	r.viper.SetConfigFile(file)
	if err := r.viper.ReadInConfig(); err != nil {
		return fmt.Errorf("cannot read config file %s: %v", file, err)
	}
	log.WithField("file", file).Info("config read")
	return nil
}

// ParseSettings fills all settings from flags, environment and config
// file, and applies the log level.
func (r *Runner) ParseSettings() error {

	for _, s := range r.settings {

		if s.required && !r.IsSet(s.name) {
			return fmt.Errorf("setting '%s' is required", s.name)
		}

		switch t := s.target.(type) {
		case *string:
			*t = r.viper.GetString(s.name)
		case *int:
			*t = r.viper.GetInt(s.name)
		case *bool:
			*t = r.viper.GetBool(s.name)
		case *time.Duration:
			*t = r.viper.GetDuration(s.name)
		}
	}

	if r.LogLevel != "" {
		level, err := log.ParseLevel(r.LogLevel)
		if err != nil {
			return fmt.Errorf("invalid log level: %v", err)
		}
		log.SetLevel(level)
	}

	return nil
}

// IsSet says whether a setting was made explicitly, via flag, environment
// or config file.
func (r *Runner) IsSet(name string) bool {
	for _, s := range r.settings {
		if s.name == name && s.flag.Changed {
			return true
		}
	}
	return r.viper.InConfig(name) || os.Getenv(r.envName(name)) != ""
}

//
func (r *Runner) envName(name string) string {
	return EnvPrefix + "_" + strings.ToUpper(
		strings.NewReplacer("-", "_", ".", "_").Replace(name))
}

// apiCall calls the daemon's API. Replies other than OK are turned into an
// error carrying the reply's message.
func (r *Runner) apiCall(method, path string, json bool,
	body io.Reader) (io.ReadCloser, error) {

	addr := r.Address
	if !strings.Contains(addr, "://") {
		addr = "http://" + addr
	}

	req, err := http.NewRequest(method, addr+path, body)
	if err != nil {
		return nil, err
	}
	if json {
		req.Header.Set("Accept", "application/json")
	}

	client := &http.Client{Timeout: apiTimeout}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("cannot reach daemon: %v", err)
	}

	if resp.StatusCode != http.StatusOK {
		defer resp.Body.Close()
		msg, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("%s: %s", resp.Status, strings.TrimSpace(string(msg)))
	}

	return resp.Body, nil
}

// apiPrint calls the API and copies the reply to the runner's output.
func (r *Runner) apiPrint(method, path string, body io.Reader) error {

	resp, err := r.apiCall(method, path, false, body)
	if err != nil {
		return err
	}
	defer resp.Close()

	fmt.Fprintln(r.out)
	if _, err := io.Copy(r.out, resp); err != nil {
		return err
	}
	fmt.Fprintln(r.out)
	return nil
}

