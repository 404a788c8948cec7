/*
 * errors.go, part of godesc.
 *
 * This program is free software; you can redistribute it and/or modify
 * it under the terms of the GNU Lesser General Public License as
 * published by the Free Software Foundation; either version 2.1 of the
 * License, or (at your option) any later version.
 *
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
 * GNU General Public License for more details.
 *
 * You should have received a copy of the GNU Lesser General
 * Public License along with this program.  If not, see
 * <http://www.gnu.org/licenses/>.
 *
 */

package desc

//Error is the interface for errors that all packages in this library implement.
//The Decorate method allows to add and retrieve info from the error, without
//changing its type or wrapping it around something else. The decorate slice
//should contain a list of functions in the calling stack, plus, for each
//function, any relevant information, or nothing. If information is to be added
//to an element of the slice, it should be in this format: "FunctionName: Extra info".
type Error interface {
	Error() string
	Decorate(string) []string
}

//CError is the concrete error type of the desc package.
type CError struct {
	msg  string
	deco []string
}

func (err CError) Error() string { return err.msg }

//Decorate adds the deco string to the decoration slice of strings of the
//error and returns the resulting slice. If passed an empty string, it just
//returns the current value without adding the empty string to the slice.
func (err CError) Decorate(deco string) []string {
	if deco != "" {
		err.deco = append(err.deco, deco)
	}
	return err.deco
}

//errDecorate asserts that the error implements desc.Error and decorates it
//with the caller's name before returning it. Errors of any other type are
//wrapped into a CError first.
func errDecorate(err error, caller string) error {
	err2, ok := err.(Error)
	if !ok {
		return CError{err.Error(), []string{caller}}
	}
	err2.Decorate(caller)
	return err2
}

//PanicMsg is a message used for panics, even though it does satisfy the error
//interface. For errors use CError.
type PanicMsg string

func (v PanicMsg) Error() string { return string(v) }

const (
	ErrNilData         = PanicMsg("godesc: nil data given")
	ErrShape           = PanicMsg("godesc: dimension mismatch")
	ErrIndexOutOfRange = PanicMsg("godesc: index out of range")
)
