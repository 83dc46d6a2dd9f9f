/*
Package validate is the syntactic gatekeeper that runs before any parsing.

Validate applies two regular-expression checks to raw text:

  - Shape: the whole string is made of the variables x and y, digits, '.',
    spaces or tabs, the operators + - * /, parentheses, and the tokens
    sin( cos( exp( log(.
  - Adjacency: two variable letters separated only by optional whitespace
    ("xy", "x y") are rejected to rule out implicit multiplication.

The checks are deliberately conservative; text that passes may still be a
syntax error for the symbolic parser ("sin(x) cos(y)", "x***y").
*/
package validate
