// Package mailer provides SMTP email sending with process-wide write-once
// configuration, display-name address formatting and parsing, a universal
// recipient override for non-production environments, and a body-dump debug
// mode.
package mailer
