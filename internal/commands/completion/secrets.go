// Copyright 2025 The Switchboard Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package completion

import (
	"context"
	"time"

	"github.com/spf13/cobra"

	"github.com/switchboard-io/switchboard/internal/secrets"
)

// CompleteSecretKeys provides completion for stored secret keys. Only key
// names are emitted, never values.
func CompleteSecretKeys(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	return SafeCompletionWrapper(func() ([]string, cobra.ShellCompDirective) {
		resolver, err := secrets.DefaultResolver()
		if err != nil {
			return nil, cobra.ShellCompDirectiveNoFileComp
		}

		// Keychain prompts would hang the shell; keep lookups bounded
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()

		metas, err := resolver.List(ctx)
		if err != nil {
			return nil, cobra.ShellCompDirectiveNoFileComp
		}

		keys := make([]string, 0, len(metas))
		for _, meta := range metas {
			keys = append(keys, meta.Key+"\t"+meta.Backend)
		}

		return keys, cobra.ShellCompDirectiveNoFileComp
	})
}

// CompleteBackendNames provides completion for --backend flag values from
// the backends available on this machine.
func CompleteBackendNames(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	return SafeCompletionWrapper(func() ([]string, cobra.ShellCompDirective) {
		resolver, err := secrets.DefaultResolver()
		if err != nil {
			return nil, cobra.ShellCompDirectiveNoFileComp
		}

		backends := resolver.Backends()
		names := make([]string, 0, len(backends))
		for _, b := range backends {
			names = append(names, b.Name())
		}

		return names, cobra.ShellCompDirectiveNoFileComp
	})
}
