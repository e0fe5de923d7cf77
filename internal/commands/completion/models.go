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

	"github.com/spf13/cobra"

	"github.com/switchboard-io/switchboard/internal/commands/shared"
)

// CompleteModelIDs provides completion for model ids from the configured
// catalog. Disabled models are included; commands like enable exist to
// act on them.
func CompleteModelIDs(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	return SafeCompletionWrapper(func() ([]string, cobra.ShellCompDirective) {
		cfg, err := LoadConfigForCompletion()
		if err != nil || cfg == nil {
			return nil, cobra.ShellCompDirectiveNoFileComp
		}

		src, err := shared.OpenSource(cfg)
		if err != nil {
			return nil, cobra.ShellCompDirectiveNoFileComp
		}
		defer src.Close()

		models, err := src.Load(context.Background())
		if err != nil {
			return nil, cobra.ShellCompDirectiveNoFileComp
		}

		ids := make([]string, 0, len(models))
		for _, m := range models {
			entry := m.ID
			if m.DisplayName != "" {
				entry += "\t" + m.DisplayName
			}
			ids = append(ids, entry)
		}

		return ids, cobra.ShellCompDirectiveNoFileComp
	})
}
