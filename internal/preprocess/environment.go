package preprocess

import (
	"go.starlark.net/starlark"
	"go.starlark.net/starlarkstruct"

	"github.com/StinkyLord/notice-builder/internal/licenses"
	"github.com/StinkyLord/notice-builder/internal/model"
	"github.com/StinkyLord/notice-builder/internal/notice"
)

// contextValue builds the frozen ctx struct passed to preprocess().
func contextValue(env notice.Environment) *starlarkstruct.Struct {
	var (
		vcsURL string
		config model.RepositoryConfiguration
	)

	if env.Result != nil {
		vcsURL = env.Result.Repository.VCSURL
		config = env.Result.Repository.Config
	}

	ctx := starlarkstruct.FromStringDict(starlarkstruct.Default, starlark.StringDict{
		"vcs_url":               starlark.String(vcsURL),
		"components":            componentsValue(env),
		"scan_results":          scanResultsValue(env.Result),
		"excludes":              excludesValue(config.Excludes),
		"resolutions":           resolutionsValue(config.Resolutions),
		"copyright_garbage":     garbageValue(env),
		"license_configuration": licenseConfigValue(env.Licenses),
		"is_garbage": starlark.NewBuiltin("is_garbage", func(
			_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple,
		) (starlark.Value, error) {
			var statement string
			if err := starlark.UnpackPositionalArgs(b.Name(), args, kwargs, 1, &statement); err != nil {
				return nil, err
			}

			return starlark.Bool(env.Garbage.Contains(statement)), nil
		}),
		"include_in_notice": starlark.NewBuiltin("include_in_notice", func(
			_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple,
		) (starlark.Value, error) {
			var license string
			if err := starlark.UnpackPositionalArgs(b.Name(), args, kwargs, 1, &license); err != nil {
				return nil, err
			}

			return starlark.Bool(env.Licenses.IncludeInNotice(license)), nil
		}),
		"is_path_excluded": starlark.NewBuiltin("is_path_excluded", func(
			_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple,
		) (starlark.Value, error) {
			var path string
			if err := starlark.UnpackPositionalArgs(b.Name(), args, kwargs, 1, &path); err != nil {
				return nil, err
			}

			return starlark.Bool(len(config.Excludes.PathExcludesFor(path)) > 0), nil
		}),
		"licenses_in": starlark.NewBuiltin("licenses_in", func(
			_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple,
		) (starlark.Value, error) {
			var category string
			if err := starlark.UnpackPositionalArgs(b.Name(), args, kwargs, 1, &category); err != nil {
				return nil, err
			}

			return stringList(env.Licenses.LicensesIn(category)), nil
		}),
		"categories_of": starlark.NewBuiltin("categories_of", func(
			_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple,
		) (starlark.Value, error) {
			var license string
			if err := starlark.UnpackPositionalArgs(b.Name(), args, kwargs, 1, &license); err != nil {
				return nil, err
			}

			return stringList(env.Licenses.CategoriesOf(license)), nil
		}),
	})
	ctx.Freeze()

	return ctx
}

func componentsValue(env notice.Environment) *starlark.List {
	if env.Result == nil {
		return starlark.NewList(nil)
	}

	components := env.Result.Components()
	values := make([]starlark.Value, 0, len(components))

	for _, c := range components {
		values = append(values, starlarkstruct.FromStringDict(starlarkstruct.Default, starlark.StringDict{
			"id":                starlark.String(c.ID.String()),
			"type":              starlark.String(c.ID.Type),
			"namespace":         starlark.String(c.ID.Namespace),
			"name":              starlark.String(c.ID.Name),
			"version":           starlark.String(c.ID.Version),
			"is_project":        starlark.Bool(c.IsProject),
			"excluded":          starlark.Bool(c.Excluded),
			"declared_licenses": stringList(c.DeclaredLicenses),
		}))
	}

	return starlark.NewList(values)
}

func garbageValue(env notice.Environment) *starlarkstruct.Struct {
	return starlarkstruct.FromStringDict(starlarkstruct.Default, starlark.StringDict{
		"items":    stringList(env.Garbage.Items()),
		"patterns": stringList(env.Garbage.Patterns()),
	})
}

func licenseConfigValue(cfg *licenses.Configuration) *starlarkstruct.Struct {
	var (
		categories []starlark.Value
		licenseIDs []starlark.Value
	)

	if cfg != nil {
		for _, cat := range cfg.Categories {
			categories = append(categories, starlarkstruct.FromStringDict(starlarkstruct.Default, starlark.StringDict{
				"name":                   starlark.String(cat.Name),
				"description":            starlark.String(cat.Description),
				"include_in_notice_file": starlark.Bool(cat.InNotice()),
			}))
		}

		for _, lic := range cfg.Licenses {
			licenseIDs = append(licenseIDs, starlarkstruct.FromStringDict(starlarkstruct.Default, starlark.StringDict{
				"id":         starlark.String(lic.ID),
				"categories": stringList(lic.Categories),
			}))
		}
	}

	return starlarkstruct.FromStringDict(starlarkstruct.Default, starlark.StringDict{
		"categories": starlark.NewList(categories),
		"licenses":   starlark.NewList(licenseIDs),
	})
}

func newStruct(fields starlark.StringDict) *starlarkstruct.Struct {
	return starlarkstruct.FromStringDict(starlarkstruct.Default, fields)
}

func locationValue(loc model.TextLocation) *starlarkstruct.Struct {
	return newStruct(starlark.StringDict{
		"path":       starlark.String(loc.Path),
		"start_line": starlark.MakeInt(loc.StartLine),
		"end_line":   starlark.MakeInt(loc.EndLine),
	})
}

// scanResultsValue exposes the raw scanner output, one entry per scanned
// component in file order. Issues carry their resolution state.
func scanResultsValue(result *model.AnalysisResult) *starlark.List {
	if result == nil || result.Scanner == nil {
		return starlark.NewList(nil)
	}

	resolutions := result.Repository.Config.Resolutions
	containers := make([]starlark.Value, 0, len(result.Scanner.Results))

	for _, c := range result.Scanner.Results {
		runs := make([]starlark.Value, 0, len(c.Results))

		for _, r := range c.Results {
			var licenseFindings, copyrightFindings, issues []starlark.Value

			for _, lf := range r.Summary.LicenseFindings {
				licenseFindings = append(licenseFindings, newStruct(starlark.StringDict{
					"license":  starlark.String(lf.License),
					"location": locationValue(lf.Location),
				}))
			}

			for _, cf := range r.Summary.CopyrightFindings {
				copyrightFindings = append(copyrightFindings, newStruct(starlark.StringDict{
					"statement": starlark.String(cf.Statement),
					"location":  locationValue(cf.Location),
				}))
			}

			for _, issue := range r.Summary.Issues {
				var location starlark.Value = starlark.None
				if issue.Location != nil {
					location = locationValue(*issue.Location)
				}

				issues = append(issues, newStruct(starlark.StringDict{
					"source":   starlark.String(issue.Source),
					"message":  starlark.String(issue.Message),
					"severity": starlark.String(issue.Severity),
					"location": location,
					"resolved": starlark.Bool(resolutions.IsResolved(issue)),
				}))
			}

			runs = append(runs, newStruct(starlark.StringDict{
				"scanner":            starlark.String(r.Scanner),
				"license_findings":   starlark.NewList(licenseFindings),
				"copyright_findings": starlark.NewList(copyrightFindings),
				"issues":             starlark.NewList(issues),
			}))
		}

		containers = append(containers, newStruct(starlark.StringDict{
			"id":      starlark.String(c.ID.String()),
			"results": starlark.NewList(runs),
		}))
	}

	return starlark.NewList(containers)
}

func excludesValue(excludes model.Excludes) *starlarkstruct.Struct {
	paths := make([]starlark.Value, 0, len(excludes.Paths))
	for _, e := range excludes.Paths {
		paths = append(paths, ruleValue(e.Pattern, e.Reason, e.Comment))
	}

	scopes := make([]starlark.Value, 0, len(excludes.Scopes))
	for _, e := range excludes.Scopes {
		scopes = append(scopes, ruleValue(e.Pattern, e.Reason, e.Comment))
	}

	return newStruct(starlark.StringDict{
		"paths":  starlark.NewList(paths),
		"scopes": starlark.NewList(scopes),
	})
}

func resolutionsValue(resolutions model.Resolutions) *starlarkstruct.Struct {
	issues := make([]starlark.Value, 0, len(resolutions.Issues))
	for _, r := range resolutions.Issues {
		issues = append(issues, newStruct(starlark.StringDict{
			"message": starlark.String(r.Message),
			"reason":  starlark.String(r.Reason),
			"comment": starlark.String(r.Comment),
		}))
	}

	return newStruct(starlark.StringDict{"issues": starlark.NewList(issues)})
}

func ruleValue(pattern, reason, comment string) *starlarkstruct.Struct {
	return newStruct(starlark.StringDict{
		"pattern": starlark.String(pattern),
		"reason":  starlark.String(reason),
		"comment": starlark.String(comment),
	})
}
