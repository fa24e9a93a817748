package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/c360studio/policytraits/config"
	"github.com/c360studio/policytraits/policy"
	"github.com/c360studio/policytraits/server"
)

// PolicyResult is the outcome of resolving one named policy.
type PolicyResult struct {
	Name   string             `json:"name"`
	Policy *policy.Descriptor `json:"policy,omitempty"`
	Error  string             `json:"error,omitempty"`
}

func categoriesCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "categories",
		Short: "List trait categories in registry order with their defaults",
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := setup(cmd, opts, "")
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), server.Categories(env.resolver.Registry()))
		},
	}
}

func resolveCmd(opts *globalOptions) *cobra.Command {
	var (
		traits []string
		base   []string
		names  []string
		glob   string
	)

	cmd := &cobra.Command{
		Use:   "resolve",
		Short: "Resolve traits given as flags or every policy in the loaded documents",
		Example: `  policytraits resolve --trait execution_space=cuda --trait schedule=dynamic
  policytraits resolve --base index_type=int32 --trait execution_space=cuda
  policytraits resolve --glob 'policies/**/*.yaml' --policy saxpy`,
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := setup(cmd, opts, glob)
			if err != nil {
				return err
			}

			if len(traits) > 0 || len(base) > 0 {
				d, err := resolveFlags(env.resolver, traits, base)
				if err != nil {
					return err
				}
				return writeJSON(cmd.OutOrStdout(), d)
			}

			results, err := resolvePolicies(env.resolver, env.cfg, names)
			if werr := writeJSON(cmd.OutOrStdout(), results); werr != nil {
				return werr
			}
			return err
		},
	}

	cmd.Flags().StringArrayVarP(&traits, "trait", "t", nil, "Trait as kind=value (repeatable)")
	cmd.Flags().StringArrayVar(&base, "base", nil, "Trait of a base policy to convert from, as kind=value (repeatable)")
	cmd.Flags().StringArrayVarP(&names, "policy", "p", nil, "Only resolve the named policy (repeatable)")
	cmd.Flags().StringVar(&glob, "glob", "", "Load every policy document matching the pattern (supports **)")

	return cmd
}

// parseTraitFlags converts kind=value flags to trait entries.
func parseTraitFlags(flags []string) ([]config.TraitConfig, error) {
	entries := make([]config.TraitConfig, 0, len(flags))
	for _, f := range flags {
		kind, value, _ := strings.Cut(f, "=")
		if strings.TrimSpace(kind) == "" {
			return nil, fmt.Errorf("invalid trait %q: expected kind=value", f)
		}
		entries = append(entries, config.TraitConfig{Kind: kind, Value: value})
	}
	return entries, nil
}

func resolveFlags(r *policy.Resolver, traitFlags, baseFlags []string) (policy.Descriptor, error) {
	traits, err := parseTraitFlags(traitFlags)
	if err != nil {
		return policy.Descriptor{}, err
	}
	items := config.PolicyConfig{Traits: traits}.Items()
	if len(baseFlags) == 0 {
		return r.Resolve(items...)
	}

	baseTraits, err := parseTraitFlags(baseFlags)
	if err != nil {
		return policy.Descriptor{}, err
	}
	base, err := r.Resolve(config.PolicyConfig{Traits: baseTraits}.Items()...)
	if err != nil {
		return policy.Descriptor{}, fmt.Errorf("base policy: %w", err)
	}
	return r.Convert(base, items...)
}

// resolvePolicies resolves the named policies of cfg, or all of them when
// names is empty. Every policy is attempted; the returned error joins the
// failures.
func resolvePolicies(r *policy.Resolver, cfg *config.Config, names []string) ([]PolicyResult, error) {
	selected := cfg.Policies
	if len(names) > 0 {
		selected = make([]config.PolicyConfig, 0, len(names))
		for _, name := range names {
			p, ok := cfg.Policy(name)
			if !ok {
				return nil, fmt.Errorf("policy %q not found", name)
			}
			selected = append(selected, p)
		}
	}

	results := make([]PolicyResult, 0, len(selected))
	var errs []error
	for _, p := range selected {
		d, err := r.Resolve(p.Items()...)
		if err != nil {
			errs = append(errs, fmt.Errorf("policy %s: %w", p.Name, err))
			results = append(results, PolicyResult{Name: p.Name, Error: err.Error()})
			continue
		}
		results = append(results, PolicyResult{Name: p.Name, Policy: &d})
	}
	return results, errors.Join(errs...)
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
