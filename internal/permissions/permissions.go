/*
Copyright 2026.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

// Package permissions decides whether a descriptor's external role may be
// assumed inside a namespace. The namespace opts roles in through the
// permitted-key-name annotation, whose value is a regular expression that
// must match the full role ARN.
package permissions

import (
	"fmt"
	"regexp"

	"github.com/anarcher/kubernetes-external-secrets/api/v1alpha1"
	infraerrors "github.com/anarcher/kubernetes-external-secrets/shared/infrastructure/errors"
)

// Decision is the outcome of a permission evaluation.
type Decision struct {
	// Allowed reports whether the role may be assumed.
	Allowed bool
	// Reason is a human-readable explanation when denied.
	Reason string
}

// Evaluate decides whether roleArn may be assumed for fetches on behalf of
// the named secret in the given namespace.
//
// Requests that specify no role are always permitted. Otherwise the
// namespace's permitted-key-name annotation (absent treated as empty) is
// compiled as a regular expression and must match the entire role ARN; the
// empty pattern matches only the empty string, so any role against an
// unannotated namespace is denied.
//
// A malformed annotation is a cluster-side configuration error and is
// returned as a ValidationError, distinct from a denial.
func Evaluate(namespaceAnnotations map[string]string, secretName, namespace, roleArn string) (Decision, error) {
	if roleArn == "" {
		return Decision{Allowed: true}, nil
	}

	pattern := namespaceAnnotations[v1alpha1.AnnotationPermittedKeyName]

	permitted, err := regexp.Compile(anchor(pattern))
	if err != nil {
		return Decision{}, infraerrors.NewValidationError(
			infraerrors.AnnotationField(v1alpha1.AnnotationPermittedKeyName),
			pattern,
			fmt.Sprintf("invalid regular expression on namespace %q: %v", namespace, err),
		)
	}

	if !permitted.MatchString(roleArn) {
		return Decision{
			Allowed: false,
			Reason: fmt.Sprintf(
				"namespace %q does not allow secret %q to assume role %q",
				namespace, secretName, roleArn,
			),
		}, nil
	}
	return Decision{Allowed: true}, nil
}

// anchor forces full-string matching regardless of how the annotation
// pattern is written.
func anchor(pattern string) string {
	return `\A(?:` + pattern + `)\z`
}
