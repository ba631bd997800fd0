/*
MIT License

Copyright (c) 2025 Nicolas JUHEL

Permission is hereby granted, free of charge, to any person obtaining a copy
of this software and associated documentation files (the "Software"), to deal
in the Software without restriction, including without limitation the rights
to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
copies of the Software, and to permit persons to whom the Software is
furnished to do so, subject to the following conditions:

The above copyright notice and this permission notice shall be included in all
copies or substantial portions of the Software.

THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
SOFTWARE.
*/

package config

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Load reads Core plus every module's opaque subtree from the file at
// path into a fresh viper.Viper, trying YAML first and falling back to
// TOML on extension or parse mismatch, and returns both the Core values
// and the Viper so module InitMaster hooks can pull their own subtrees by
// key (cycle.Cycle.Set/Lookup is populated from this, not the other way
// around).
func Load(path string) (*Core, *viper.Viper, error) {
	v := viper.New()
	v.SetConfigFile(path)

	if strings.HasSuffix(path, ".toml") {
		v.SetConfigType("toml")
	} else {
		v.SetConfigType("yaml")
	}

	if err := v.ReadInConfig(); err != nil {
		if strings.HasSuffix(path, ".toml") {
			return nil, nil, fmt.Errorf("config: read %s: %w", path, err)
		}
		// retry as TOML before giving up, matching the original's tolerance
		// for either format regardless of extension.
		v.SetConfigType("toml")
		if err2 := v.ReadInConfig(); err2 != nil {
			return nil, nil, fmt.Errorf("config: read %s as yaml (%v) or toml (%w)", path, err, err2)
		}
	}

	c := Default()
	if err := v.Unmarshal(c); err != nil {
		return nil, nil, fmt.Errorf("config: unmarshal %s: %w", path, err)
	}

	return c, v, nil
}

// BindFlags binds every flag of cmd to v, so a flag whose name matches a
// config key overrides the file value on the next Unmarshal. -g and -c are
// not config keys; the caller handles them itself.
func BindFlags(cmd *cobra.Command, v *viper.Viper) error {
	return v.BindPFlags(cmd.Flags())
}
