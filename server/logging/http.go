/*
 * Copyright 2026 The Stagegate Authors. All rights reserved.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package logging

import (
	"context"
	"errors"
	"time"

	errs "github.com/stagegate/stagegate/pkg/errors"
)

// RequestLogLevel represents the severity an API call is logged with.
type RequestLogLevel int

const (
	RequestLogDebug RequestLogLevel = iota
	RequestLogInfo
	RequestLogWarn
	RequestLogError
)

// String returns the string representation of RequestLogLevel.
func (l RequestLogLevel) String() string {
	switch l {
	case RequestLogDebug:
		return "debug"
	case RequestLogInfo:
		return "info"
	case RequestLogError:
		return "error"
	}
	return "warn"
}

// toRequestLogLevel classifies an API error by its status code.
func toRequestLogLevel(err error) RequestLogLevel {
	if err == nil || errors.Is(err, context.Canceled) {
		return RequestLogDebug
	}

	switch errs.StatusOf(err) {
	case errs.ErrCodeInvalidArgument, errs.ErrCodeNotFound, errs.ErrCodeAlreadyExists:
		return RequestLogInfo
	case errs.ErrCodePermissionDenied, errs.ErrCodeUnauthenticated, errs.ErrCodeFailedPrecondition:
		return RequestLogWarn
	case errs.ErrCodeInternal, errs.ErrCodeUnavailable:
		return RequestLogError
	default:
		return RequestLogError
	}
}

// LogRequestError logs a failed API call with the level its error deserves.
func LogRequestError(logger Logger, route string, duration time.Duration, err error) {
	const template = "API : %q %s => %q"
	switch toRequestLogLevel(err) {
	case RequestLogDebug:
		logger.Debugf(template, route, duration, err)
	case RequestLogInfo:
		logger.Infof(template, route, duration, err)
	case RequestLogWarn:
		logger.Warnf(template, route, duration, err)
	default:
		logger.Errorf(template, route, duration, err)
	}
}

// LogRequestSuccess logs a successful API call at debug level.
func LogRequestSuccess(logger Logger, route string, duration time.Duration) {
	logger.Debugf("API : %q %s", route, duration)
}
