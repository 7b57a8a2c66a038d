/**
 * Copyright 2025 Adobe. All rights reserved.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License. You may obtain a copy
 * of the License at http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software distributed under
 * the License is distributed on an "AS IS" BASIS, WITHOUT WARRANTIES OR REPRESENTATIONS
 * OF ANY KIND, either express or implied. See the License for the specific language
 * governing permissions and limitations under the License.
 */

package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/go-cmp/cmp"
)

// AssertStatusCode checks the response status
func AssertStatusCode(resp *Response, expected int) error {
	if resp == nil {
		return errors.New("Response should not be null")
	}
	if resp.StatusCode != expected {
		return fmt.Errorf("Unexpected status code: expected %d, got %d", expected, resp.StatusCode)
	}
	return nil
}

// AssertJSONIntEquals checks integer value under the path
func AssertJSONIntEquals(resp *Response, path string, expected int) error {
	if resp == nil {
		return errors.New("Response should not be null")
	}
	value := resp.JSON(path)
	if !value.Exists() {
		return fmt.Errorf("Unexpected value at jsonPath: %s: path not found in %s", path, resp.String())
	}
	if value.Int() != int64(expected) || value.Float() != float64(expected) {
		return fmt.Errorf("Unexpected value at jsonPath: %s: expected %d, got %s", path, expected, value.Raw)
	}
	return nil
}

// AssertJSONStringEquals checks value under the path as string
func AssertJSONStringEquals(resp *Response, path, expected string) error {
	if resp == nil {
		return errors.New("Response should not be null")
	}
	value := resp.JSON(path)
	if !value.Exists() {
		return fmt.Errorf("Unexpected value at jsonPath: %s: path not found in %s", path, resp.String())
	}
	if value.String() != expected {
		return fmt.Errorf("Unexpected value at jsonPath: %s: expected %q, got %q", path, expected, value.String())
	}
	return nil
}

// AssertBodyContains checks the body contains the text
func AssertBodyContains(resp *Response, text string) error {
	if resp == nil {
		return errors.New("Response should not be null")
	}
	if !strings.Contains(resp.String(), text) {
		return fmt.Errorf("Expected response body to contain: %s", text)
	}
	return nil
}

// AssertJSONEquals compares the body with expected JSON ignoring formatting and key order
func AssertJSONEquals(resp *Response, expected string) error {
	if resp == nil {
		return errors.New("Response should not be null")
	}
	var want, got any
	if err := json.Unmarshal([]byte(expected), &want); err != nil {
		return fmt.Errorf("expected value is not JSON: %w", err)
	}
	if err := json.Unmarshal(resp.Body, &got); err != nil {
		return fmt.Errorf("response body is not JSON: %w", err)
	}
	if diff := cmp.Diff(want, got); diff != "" {
		return fmt.Errorf("Unexpected response body (-want +got):\n%s", diff)
	}
	return nil
}
