package validation

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

// Limits and formats for learning plan content.
const (
	maxTopics      = 10
	maxResources   = 20
	maxTopicLength = 50
	maxResourceLen = 255
)

var resourceURLPattern = regexp.MustCompile(`^(https?://)?([\w-]+\.)+[\w-]+(/[\w-./?%&=]*)?$`)

// IsValidTopic reports whether a single topic string is acceptable:
// non-blank and at most 50 characters.
func IsValidTopic(topic string) bool {
	return strings.TrimSpace(topic) != "" && len(topic) <= maxTopicLength
}

// IsValidResource reports whether a resource string is acceptable:
// non-blank, at most 255 characters, and either a URL or a
// "book:"/"course:" reference.
func IsValidResource(resource string) bool {
	if strings.TrimSpace(resource) == "" || len(resource) > maxResourceLen {
		return false
	}
	return resourceURLPattern.MatchString(resource) ||
		strings.HasPrefix(resource, "book:") ||
		strings.HasPrefix(resource, "course:")
}

// ValidateTopicsAndResources checks list sizes and each entry's format.
func ValidateTopicsAndResources(topics, resources []string) error {
	if len(topics) > maxTopics {
		return fmt.Errorf("Maximum %d topics allowed", maxTopics)
	}
	if len(resources) > maxResources {
		return fmt.Errorf("Maximum %d resources allowed", maxResources)
	}
	for _, topic := range topics {
		if !IsValidTopic(topic) {
			return fmt.Errorf("Invalid topic found. Topics must be between 1 and 50 characters")
		}
	}
	for _, resource := range resources {
		if !IsValidResource(resource) {
			return fmt.Errorf("Invalid resource URL or format found")
		}
	}
	return nil
}

// ValidatePlanDates checks the start/end window. The start-in-the-past
// check applies only when a plan is created, not when it is updated.
func ValidatePlanDates(start, end time.Time, isNew bool) error {
	if !start.Before(end) {
		return fmt.Errorf("Start date must be before end date")
	}
	if isNew {
		// Date-granular: a plan starting today is not in the past.
		now := time.Now()
		today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, start.Location())
		if start.Before(today) {
			return fmt.Errorf("Start date cannot be in the past")
		}
	}
	return nil
}
