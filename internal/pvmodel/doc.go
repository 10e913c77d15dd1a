// Package pvmodel implements the photovoltaic physical models applied to a
// site's hourly series: Beysens dew yield, water vapor pressure, Fischer
// degradation kinetics with the Van't Hoff acceleration factor, relative
// power, and Bosco-Silverman solder fatigue. Functions are pure and safe for
// concurrent use.
package pvmodel
